package mailin

import (
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/emersion/go-smtp"
	seclog "github.com/rumahkita/rumahkita-backend/internal/logger"
	"github.com/rumahkita/rumahkita-backend/internal/repository"
	"github.com/rumahkita/rumahkita-backend/internal/storage"
	"github.com/rumahkita/rumahkita-backend/internal/websocket"
)

// Security limits
const (
	DefaultMaxMessageSize = 25 * 1024 * 1024 // 25 MB
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
)

// Backend implements the go-smtp Backend interface. It routes tenant email
// replies addressed to inquiry-<id>@<mail domain> into the inquiry's legacy
// text blob, which keeps the blob format a live storage shape.
type Backend struct {
	inquiryRepo    repository.InquiryRepository
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
	wsHub          *websocket.Hub
	mailDomain     string
	logger         *slog.Logger
	security       *seclog.SecurityLogger
}

// BackendConfig holds configuration for the mail intake backend
type BackendConfig struct {
	InquiryRepo    repository.InquiryRepository
	AttachmentRepo repository.AttachmentRepository
	FileStorage    storage.FileStorage
	WSHub          *websocket.Hub
	MailDomain     string
	Logger         *slog.Logger
}

// NewBackend creates a new mail intake backend
func NewBackend(cfg *BackendConfig) *Backend {
	var security *seclog.SecurityLogger
	if cfg.Logger != nil {
		security = seclog.NewSecurityLoggerWithHandler(cfg.Logger.Handler())
	} else {
		security = seclog.NewSecurityLogger()
	}
	return &Backend{
		inquiryRepo:    cfg.InquiryRepo,
		attachmentRepo: cfg.AttachmentRepo,
		fileStorage:    cfg.FileStorage,
		wsHub:          cfg.WSHub,
		mailDomain:     cfg.MailDomain,
		logger:         cfg.Logger,
		security:       security,
	}
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	remoteAddr := c.Conn().RemoteAddr().String()
	if b.logger != nil {
		b.logger.Info("new SMTP connection", slog.String("remote_addr", remoteAddr))
	}
	sess := NewSession(b)
	sess.remoteAddr = remoteAddr
	return sess, nil
}

// ServerConfig holds security configuration for the intake server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	TLSConfig      *tls.Config
}

// NewSecureServer creates an SMTP server with security settings applied
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	} else {
		s.MaxMessageBytes = DefaultMaxMessageSize
	}

	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	} else {
		s.MaxRecipients = DefaultMaxRecipients
	}

	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	} else {
		s.ReadTimeout = DefaultReadTimeout
	}

	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	} else {
		s.WriteTimeout = DefaultWriteTimeout
	}

	s.AllowInsecureAuth = cfg.AllowInsecure

	if cfg.TLSConfig != nil {
		s.TLSConfig = cfg.TLSConfig
	}

	// Cap line length to prevent buffer abuse
	s.MaxLineLength = DefaultMaxLineLength

	return s
}
