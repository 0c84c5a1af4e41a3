package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) WebsocketUpgradeHandler(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebsocketHandler streams totals_updated events until the client disconnects.
func (h *Handler) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.hub.Serve(conn)
	})
}
