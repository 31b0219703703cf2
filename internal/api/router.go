package api

import (
	"log/slog"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rumahkita/rumahkita-backend/internal/api/handlers"
	"github.com/rumahkita/rumahkita-backend/internal/api/middleware"
	"github.com/rumahkita/rumahkita-backend/internal/inquiry"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
	"github.com/rumahkita/rumahkita-backend/internal/websocket"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB             *gorm.DB
	Service        *inquiry.Service
	AttachmentRepo repository.AttachmentRepository
	PropertyRepo   repository.PropertyRepository
	WSHub          *websocket.Hub
	Logger         *slog.Logger
	// Security configuration
	APIKey         string   // API key for authentication (empty = disabled)
	AllowedOrigins []string // Allowed CORS origins
	RateLimit      int      // Requests per second (0 = use env default)
	RateBurst      int      // Burst size for rate limiter
	EnableAuth     bool     // Enable API key authentication
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS - Set environment variable if origins provided in config
	if len(cfg.AllowedOrigins) > 0 {
		os.Setenv("ALLOWED_ORIGINS", strings.Join(cfg.AllowedOrigins, ","))
	}
	e.Use(middleware.SecureCORS())

	// 4. Rate limiting - use RateLimiterWithConfig if custom values provided
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(float64(cfg.RateLimit), cfg.RateBurst, cfg.Logger))
	} else {
		e.Use(middleware.RateLimiter(cfg.Logger))
	}

	// 5. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	inquiryHandler := handlers.NewInquiryHandler(cfg.Service)
	attachmentHandler := handlers.NewAttachmentHandler(cfg.Service, cfg.AttachmentRepo)
	propertyHandler := handlers.NewPropertyHandler(cfg.Service, cfg.PropertyRepo)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// WebSocket endpoint for thread update subscriptions (auth happens at
	// origin check time, not via API key)
	if cfg.WSHub != nil {
		wsHandler := handlers.NewWSHandler(cfg.WSHub, websocket.NewSecureUpgrader(cfg.Logger), cfg.Logger)
		e.GET("/ws", wsHandler.Handle)
	}

	// API routes
	api := e.Group("/api")

	// Apply API key authentication if enabled
	// Set API_KEY env var if provided in config
	if cfg.EnableAuth && cfg.APIKey != "" {
		os.Setenv("API_KEY", cfg.APIKey)
	}
	api.Use(middleware.APIKeyAuth(cfg.Logger))

	// Inquiry routes
	inquiries := api.Group("/inquiries")
	inquiries.GET("", inquiryHandler.List)
	inquiries.GET("/:id", inquiryHandler.Get)
	inquiries.GET("/:id/thread", inquiryHandler.GetThread)
	inquiries.POST("/:id/messages", inquiryHandler.SendMessage)
	inquiries.POST("/:id/assign", inquiryHandler.Assign)

	// Attachment routes (nested under inquiries)
	inquiries.GET("/:id/attachments", attachmentHandler.List)
	inquiries.POST("/:id/attachments", attachmentHandler.Upload)

	// Attachment routes (standalone)
	attachments := api.Group("/attachments")
	attachments.GET("/:id", attachmentHandler.Get)
	attachments.GET("/:id/download", attachmentHandler.Download)

	// Property routes (backing the unit assignment picker)
	properties := api.Group("/properties")
	properties.GET("", propertyHandler.List)
	properties.GET("/:id", propertyHandler.Get)
	properties.GET("/:id/units", propertyHandler.Units)

	return e
}
