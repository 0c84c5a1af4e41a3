package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
)

func (h *Handler) HealthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// ReadyHandler pings both stores and reports 503 when either is down.
func (h *Handler) ReadyHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	checks := fiber.Map{}
	ready := true

	for name, ping := range map[string]func(context.Context) error{
		"primary": h.paddle.Ping,
		"sms":     h.sms.Ping,
	} {
		if err := ping(ctx); err != nil {
			logger.Log.Warn("Store not ready", zap.String("store", name), zap.Error(err))
			checks[name] = "unavailable"
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"checks": checks,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ready",
		"checks": checks,
	})
}
