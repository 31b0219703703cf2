package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rumahkita/rumahkita-backend/internal/api"
	"github.com/rumahkita/rumahkita-backend/internal/cache"
	"github.com/rumahkita/rumahkita-backend/internal/config"
	"github.com/rumahkita/rumahkita-backend/internal/database"
	"github.com/rumahkita/rumahkita-backend/internal/inquiry"
	"github.com/rumahkita/rumahkita-backend/internal/mailin"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
	"github.com/rumahkita/rumahkita-backend/internal/storage"
	"github.com/rumahkita/rumahkita-backend/internal/websocket"
)

func main() {
	// Load configuration first so the log level is honored
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting RumahKita Backend Server...")
	cfg.LogConfig(logger)

	// Database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// File storage for attachments
	fileStorage, err := storage.NewLocalStorage(cfg.AttachmentStoragePath)
	if err != nil {
		slog.Error("Failed to initialize file storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	inquiryRepo := repository.NewInquiryRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db, fileStorage)
	propertyRepo := repository.NewPropertyRepository(db)

	// Caches
	unitCache, err := cache.NewUnitCache(cfg.UnitCachePath)
	if err != nil {
		slog.Error("Failed to open unit cache", slog.Any("error", err))
		os.Exit(1)
	}
	defer unitCache.Close()

	mediaCache := cache.NewMediaCache()
	defer mediaCache.Close()

	// WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Inquiry service
	service := inquiry.NewService(&inquiry.ServiceConfig{
		InquiryRepo:    inquiryRepo,
		AttachmentRepo: attachmentRepo,
		PropertyRepo:   propertyRepo,
		FileStorage:    fileStorage,
		UnitCache:      unitCache,
		MediaCache:     mediaCache,
		WSHub:          hub,
		Window:         cfg.CorrelationWindow,
		Logger:         logger,
	})

	// HTTP server
	router := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Service:        service,
		AttachmentRepo: attachmentRepo,
		PropertyRepo:   propertyRepo,
		WSHub:          hub,
		Logger:         logger,
		APIKey:         cfg.APIKey,
		AllowedOrigins: splitOrigins(cfg.AllowedOrigins),
		RateLimit:      int(cfg.RateLimitRequests),
		RateBurst:      cfg.RateLimitBurst,
		EnableAuth:     cfg.APIKey != "",
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		slog.Info("HTTP server listening", slog.String("addr", addr))
		if err := router.Start(addr); err != nil {
			slog.Error("HTTP server stopped", slog.Any("error", err))
		}
	}()

	// SMTP intake server for tenant email replies
	backend := mailin.NewBackend(&mailin.BackendConfig{
		InquiryRepo:    inquiryRepo,
		AttachmentRepo: attachmentRepo,
		FileStorage:    fileStorage,
		WSHub:          hub,
		MailDomain:     cfg.MailDomain,
		Logger:         logger,
	})
	smtpServer := mailin.NewSecureServer(backend, &mailin.ServerConfig{
		Addr:          fmt.Sprintf(":%d", cfg.SMTPPort),
		Domain:        cfg.MailDomain,
		AllowInsecure: cfg.AppEnv != "production",
	})

	go func() {
		slog.Info("SMTP intake server listening", slog.String("addr", smtpServer.Addr))
		if err := smtpServer.ListenAndServe(); err != nil {
			slog.Error("SMTP server stopped", slog.Any("error", err))
		}
	}()

	// Verify the mail domain routes to this server. Misconfigured DNS is the
	// usual reason tenant replies never show up in a thread.
	go func() {
		checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer checkCancel()
		mailin.NewDNSCheck(mailin.DefaultDNSCheckConfig(cfg.MailDomain), logger).Check(checkCtx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := smtpServer.Close(); err != nil {
		slog.Warn("SMTP server close failed", slog.Any("error", err))
	}
	if err := router.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server shutdown failed", slog.Any("error", err))
	}

	slog.Info("Server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
