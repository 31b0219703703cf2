package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rumahkita/rumahkita-backend/internal/websocket"
)

// WSHandler upgrades connections for thread update subscriptions
type WSHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *websocket.Hub, upgrader gorillaws.Upgrader, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger,
	}
}

// Handle handles GET /ws. Clients subscribe to inquiries over the socket and
// receive thread_updated events until they disconnect.
func (h *WSHandler) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed",
				slog.String("remote_ip", c.RealIP()),
				slog.Any("error", err))
		}
		return err
	}

	client := websocket.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
