// Package logger provides secure logging functionality for the RumahKita backend.
package logger

import (
	"log/slog"
	"os"
	"time"
)

// SecurityLogger records security events from the mail intake path.
// It ensures sensitive data is never logged.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a new SecurityLogger with JSON output.
func NewSecurityLogger() *SecurityLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &SecurityLogger{
		logger: slog.New(handler),
	}
}

// NewSecurityLoggerWithHandler creates a SecurityLogger with a custom handler.
func NewSecurityLoggerWithHandler(handler slog.Handler) *SecurityLogger {
	return &SecurityLogger{
		logger: slog.New(handler),
	}
}

// RejectedRecipient logs a mail delivery attempt to an address that does not
// map to an open inquiry. Repeated rejections from one host usually mean a
// probe rather than a misconfigured tenant mail client.
func (s *SecurityLogger) RejectedRecipient(ip, recipient, reason string) {
	s.logger.Warn("rejected_recipient",
		slog.String("event_type", "rejected_recipient"),
		slog.String("ip", ip),
		slog.String("recipient", recipient),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// BlockedFileUpload logs an attachment that failed validation, either from
// the portal upload endpoint or from an inbound mail part.
func (s *SecurityLogger) BlockedFileUpload(ip, filename, reason string) {
	s.logger.Warn("blocked_file_upload",
		slog.String("event_type", "blocked_upload"),
		slog.String("ip", ip),
		slog.String("filename", filename),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// SecurityEvent logs a generic security event. Detail keys that look like
// credentials are dropped before they reach the log stream.
func (s *SecurityLogger) SecurityEvent(eventType, ip string, details map[string]string) {
	attrs := []any{
		slog.String("event_type", eventType),
		slog.String("ip", ip),
		slog.Time("timestamp", time.Now().UTC()),
	}

	for k, v := range details {
		if isSensitiveKey(k) {
			continue
		}
		attrs = append(attrs, slog.String(k, v))
	}

	s.logger.Warn("security_event", attrs...)
}

// isSensitiveKey checks if a key might contain sensitive data.
func isSensitiveKey(key string) bool {
	sensitiveKeys := map[string]bool{
		"password":      true,
		"api_key":       true,
		"apikey":        true,
		"token":         true,
		"secret":        true,
		"authorization": true,
		"auth":          true,
		"credential":    true,
		"credentials":   true,
		"session":       true,
		"cookie":        true,
	}
	return sensitiveKeys[key]
}
