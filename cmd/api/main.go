package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-fee-api/internal/handler"
	"github.com/noah-isme/sma-fee-api/internal/repository"
	"github.com/noah-isme/sma-fee-api/internal/router"
	"github.com/noah-isme/sma-fee-api/internal/service"
	"github.com/noah-isme/sma-fee-api/pkg/cache"
	"github.com/noah-isme/sma-fee-api/pkg/config"
	"github.com/noah-isme/sma-fee-api/pkg/database"
	"github.com/noah-isme/sma-fee-api/pkg/export"
	"github.com/noah-isme/sma-fee-api/pkg/logger"
	"github.com/noah-isme/sma-fee-api/pkg/storage"
)

// @title School Fee Installment API
// @version 1.0.0
// @description Student registration, installment submission, admin review and receipts
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	files, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.SnapshotTTL, logr, redisClient != nil)
	studentSvc := service.NewStudentService(studentRepo, installmentRepo, validate, logr)
	installmentSvc := service.NewInstallmentService(installmentRepo, studentRepo, cacheSvc, metrics, validate, logr, cfg.Cache.SnapshotTTL)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	apiBase := cfg.PublicBaseURL + cfg.APIPrefix
	receiptSvc := service.NewReceiptService(
		studentRepo,
		installmentRepo,
		export.NewReceiptRenderer(),
		storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL),
		metrics,
		service.ReceiptConfig{
			SchoolName:     cfg.Receipts.SchoolName,
			Address:        cfg.Receipts.Address,
			ContactNumbers: cfg.Receipts.ContactNumbers,
			Website:        cfg.Receipts.Website,
			ReceivedBy:     cfg.Receipts.ReceivedBy,
			SharedLinkBase: apiBase + "/receipts/shared",
		},
		logr,
	)
	uploadSvc := service.NewUploadService(files, metrics, service.UploadConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		MaxImageWidth:    cfg.Uploads.MaxImageWidth,
		MaxImageHeight:   cfg.Uploads.MaxImageHeight,
		MaxSourcePixels:  cfg.Uploads.MaxSourcePixels,
		JPEGQuality:      cfg.Uploads.JPEGQuality,
		PublicURLBase:    apiBase + "/uploads/" + service.ProofFolder,
	}, logr)

	checks := []handler.ReadinessCheck{{Name: "postgres", Check: db.PingContext}}
	if redisClient != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: cacheRepo.Ping})
	}

	engine := router.New(router.Options{
		Env:            cfg.Env,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
	}, router.Handlers{
		Students:     handler.NewStudentHandler(studentSvc),
		Installments: handler.NewInstallmentHandler(installmentSvc, receiptSvc),
		Receipts:     handler.NewReceiptHandler(receiptSvc),
		Uploads:      handler.NewUploadHandler(uploadSvc, files),
		Auth:         handler.NewAuthHandler(authSvc),
		Metrics:      handler.NewMetricsHandler(metrics, checks...),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
