package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-fee-api/internal/models"
	"github.com/noah-isme/sma-fee-api/internal/repository"
	"github.com/noah-isme/sma-fee-api/internal/service"
	"github.com/noah-isme/sma-fee-api/pkg/config"
	"github.com/noah-isme/sma-fee-api/pkg/database"
	"github.com/noah-isme/sma-fee-api/pkg/logger"
)

func main() {
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "", "admin full name")
	role := flag.String("role", string(models.RoleAdmin), "SUPERADMIN or ADMIN")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if *email == "" || *name == "" || password == "" {
		log.Fatal("usage: ADMIN_PASSWORD=... create-admin -email admin@example.com -name \"Admin\" [-role SUPERADMIN]")
	}

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

	if err := database.RunMigrations(db.DB, logr); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	authSvc := service.NewAuthService(repository.NewUserRepository(db), validator.New(), logr, service.AuthConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := authSvc.CreateAdmin(ctx, service.CreateAdminRequest{
		Email:    *email,
		Password: password,
		FullName: *name,
		Role:     models.UserRole(strings.ToUpper(*role)),
	})
	if err != nil {
		logr.Fatal("failed to create admin", zap.Error(err))
	}
	logr.Info("admin created", zap.String("id", user.ID), zap.String("email", user.Email), zap.String("role", string(user.Role)))
}
