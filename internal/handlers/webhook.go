package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
)

// SimpleTextingWebhookHandler acknowledges inbound SMS provider callbacks.
// Payloads are logged and not stored.
func (h *Handler) SimpleTextingWebhookHandler(c *fiber.Ctx) error {
	logger.Log.Info("SimpleTexting webhook received",
		zap.String("content_type", c.Get(fiber.HeaderContentType)),
		zap.ByteString("body", c.Body()),
	)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Webhook received",
	})
}
