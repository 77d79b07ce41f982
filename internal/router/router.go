package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-fee-api/api/swagger"
	"github.com/noah-isme/sma-fee-api/internal/handler"
	"github.com/noah-isme/sma-fee-api/internal/middleware"
	"github.com/noah-isme/sma-fee-api/internal/models"
	"github.com/noah-isme/sma-fee-api/internal/service"
	"github.com/noah-isme/sma-fee-api/pkg/config"
	"github.com/noah-isme/sma-fee-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-fee-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-fee-api/pkg/middleware/requestid"
)

const metricsPath = "/metrics"

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Students     *handler.StudentHandler
	Installments *handler.InstallmentHandler
	Receipts     *handler.ReceiptHandler
	Uploads      *handler.UploadHandler
	Auth         *handler.AuthHandler
	Metrics      *handler.MetricsHandler
}

// Options carries the cross-cutting dependencies of the router.
type Options struct {
	Env            string
	APIPrefix      string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
}

// New builds the gin engine with global middleware and all API routes.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, metricsPath))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET(metricsPath, h.Metrics.Prometheus)

	if opts.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	{
		students := api.Group("/students")
		students.POST("", h.Students.Create)
		students.GET("/lookup", h.Students.Lookup)
		students.GET("/:id", h.Students.Get)
		students.GET("/:id/installments/:installmentId/receipt", h.Receipts.View)
		students.GET("/:id/installments/:installmentId/receipt.pdf", h.Receipts.PDF)

		api.POST("/installments", h.Installments.Create)
		api.GET("/receipts/shared/:token", h.Receipts.Shared)

		uploads := api.Group("/uploads")
		uploads.POST("/payment-proof", h.Uploads.UploadProof)
		uploads.GET("/payment-proofs/:name", h.Uploads.ServeProof)

		auth := api.Group("/auth")
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", middleware.JWT(opts.Tokens), h.Auth.Logout)
		auth.GET("/me", middleware.JWT(opts.Tokens), h.Auth.Me)

		admin := api.Group("/admin")
		admin.Use(middleware.JWT(opts.Tokens), middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
		admin.GET("/installments", h.Installments.List)
		admin.GET("/installments/dashboard", h.Installments.Dashboard)
		admin.GET("/installments/export", h.Installments.Export)
		admin.PATCH("/installments", h.Installments.UpdateStatus)
		admin.POST("/installments/:id/receipt-link", h.Installments.ReceiptLink)
	}

	return r
}
