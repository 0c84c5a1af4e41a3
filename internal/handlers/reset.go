package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
)

// ResetHandler zeroes every paddle tier and removes all SMS pledges.
// Clients are notified once the paddle reset succeeded, even if the SMS
// delete then fails.
func (h *Handler) ResetHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.paddle.ResetPaddlePledges(ctx); err != nil {
		return respondError(c, err, "Failed to reset pledge data")
	}

	deleted, err := h.sms.DeleteTextPledges(ctx)
	if err == nil {
		h.baseline.Reset()
	}

	h.notifier.BroadcastTotals(ctx)

	if err != nil {
		return respondError(c, err, "Failed to reset pledge data")
	}

	logger.Log.Info("All pledge data reset", zap.Int64("text_pledges_deleted", deleted))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "All pledge data has been reset",
	})
}

func (h *Handler) ResetSMSHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	deleted, err := h.sms.DeleteTextPledges(ctx)
	if err != nil {
		return respondError(c, err, "Failed to reset SMS pledge data")
	}

	h.baseline.Reset()
	h.notifier.BroadcastTotals(ctx)

	logger.Log.Info("SMS pledge data reset", zap.Int64("text_pledges_deleted", deleted))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "SMS pledge data has been reset",
		"deleted": deleted,
	})
}
