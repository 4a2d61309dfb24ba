package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/kestrelworks/docvault/backend/internal/audit"
	"github.com/kestrelworks/docvault/backend/internal/config"
	"github.com/kestrelworks/docvault/backend/internal/database"
	"github.com/kestrelworks/docvault/backend/internal/logger"
	"github.com/kestrelworks/docvault/backend/internal/models"
	"github.com/kestrelworks/docvault/backend/internal/server"
	"github.com/kestrelworks/docvault/backend/internal/version"
)

func main() {
	// Setup logging with rotation
	logDir := getEnvDefault("DOCVAULT_LOG_DIR", filepath.Join("data", "logs"))
	_ = os.MkdirAll(logDir, 0o755)

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "docvault.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	mw := io.MultiWriter(os.Stdout, rotator)
	logger.Init(!cfg.IsProduction(), mw)
	log.SetOutput(mw)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			log.Fatalf("Usage: %s reset-password <username> <new-password>", os.Args[0])
		}
		resetPassword(db, os.Args[2], os.Args[3])
		return
	}

	if cfg.JWTSecret == "" {
		// Ephemeral secret; sessions do not survive a restart. Set
		// DOCVAULT_JWT_SECRET to keep them.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("generate session secret: %v", err)
		}
		cfg.JWTSecret = hex.EncodeToString(buf)
		logger.Log().Warn("DOCVAULT_JWT_SECRET not set, using an ephemeral secret")
	}

	// Daily audit export for the reporting tool, shortly after midnight.
	exporter := audit.NewExporter(audit.NewStore(db), cfg.ExportDir)
	scheduler := cron.New()
	if _, err := scheduler.AddJob("5 0 * * *", exporter); err != nil {
		log.Fatalf("schedule audit export: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(map[string]interface{}{
		"version": version.Full(),
		"port":    cfg.HTTPPort,
	}).Infof("starting %s backend", version.Name)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func resetPassword(db *gorm.DB, username, newPassword string) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	if err := user.SetPassword(newPassword); err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("failed to save user: %v", err)
	}

	log.Printf("Password updated successfully for user %s", username)
}

func getEnvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
