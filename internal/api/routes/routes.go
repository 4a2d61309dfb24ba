package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/kestrelworks/docvault/backend/internal/api/handlers"
	"github.com/kestrelworks/docvault/backend/internal/api/middleware"
	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/config"
	"github.com/kestrelworks/docvault/backend/internal/metrics"
	"github.com/kestrelworks/docvault/backend/internal/services"
)

// Register wires all handlers onto the router under /api/v1.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	auditStore := audit.NewStore(db)
	notifier := services.NewNotificationService(cfg.NotifyURL)

	userService := services.NewUserService(db, auditStore).
		WithNotifier(notifier).
		AuditFailedLogins(cfg.AuditFailedLogins)
	documentService := services.NewDocumentService(db, auditStore)
	tokenService := services.NewTokenService(cfg.JWTSecret)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	authHandler := handlers.NewAuthHandler(userService, tokenService, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	auditHandler := handlers.NewAuditHandler(auditStore)
	healthHandler := handlers.NewHealthHandler(db)

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(!cfg.IsProduction()),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{IsDevelopment: !cfg.IsProduction()}),
	)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.GET("/health", healthHandler.Health)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.Auth(tokenService, userService), authHandler.Me)

	// Read paths take OptionalAuth: anonymous callers still see public
	// documents, the policy engine does the narrowing.
	docs := api.Group("/documents")
	docs.Use(middleware.OptionalAuth(tokenService, userService))
	docs.GET("", documentHandler.List)
	docs.GET("/categories", documentHandler.Categories)
	docs.GET("/tags", documentHandler.Tags)
	docs.GET("/:uuid", documentHandler.Get)
	docs.POST("/:uuid/view", documentHandler.View)
	docs.POST("/:uuid/download", documentHandler.Download)

	docsAuth := api.Group("/documents")
	docsAuth.Use(middleware.Auth(tokenService, userService))
	docsAuth.POST("", documentHandler.Create)
	docsAuth.PUT("/:uuid", documentHandler.Update)
	docsAuth.DELETE("/:uuid", documentHandler.Delete)
	docsAuth.GET("/stats", documentHandler.Stats)

	profile := api.Group("/profile")
	profile.Use(middleware.Auth(tokenService, userService))
	profile.PUT("", userHandler.UpdateProfile)
	profile.PUT("/password", userHandler.ChangePassword)

	admin := api.Group("/admin")
	admin.Use(middleware.Auth(tokenService, userService), middleware.RequireAdmin())
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/audit", auditHandler.List)
	admin.GET("/audit/export", auditHandler.Export)

	return nil
}
