package websocket

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

// upgraderBufferSize is plenty for thread update frames, which are small
// JSON payloads rather than attachment content.
const upgraderBufferSize = 1024

// originsFromEnv reads ALLOWED_ORIGINS, trimming whitespace and dropping
// empty entries. Falls back to the local dev frontend when nothing is set.
func originsFromEnv() []string {
	parts := strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
	origins := make([]string, 0, len(parts))
	for _, origin := range parts {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

// NewSecureUpgrader creates a WebSocket upgrader that only accepts
// connections from the portal frontend's configured origins.
func NewSecureUpgrader(logger *slog.Logger) websocket.Upgrader {
	allowedOrigins := originsFromEnv()

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Allow same-origin requests (empty Origin)
			if origin == "" {
				return true
			}

			for _, allowed := range allowedOrigins {
				if allowed == origin {
					return true
				}
			}

			if logger != nil {
				logger.Warn("rejected websocket connection",
					slog.String("origin", origin),
					slog.String("remote_ip", r.RemoteAddr))
			}
			return false
		},
		ReadBufferSize:  upgraderBufferSize,
		WriteBufferSize: upgraderBufferSize,
	}
}

// DefaultUpgrader returns an upgrader that allows all origins (for development)
func DefaultUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  upgraderBufferSize,
		WriteBufferSize: upgraderBufferSize,
	}
}
