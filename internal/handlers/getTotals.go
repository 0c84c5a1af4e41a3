package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetTotalsHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	totals, err := h.totals.Compute(ctx)
	if err != nil {
		return respondError(c, err, "Failed to fetch totals")
	}

	return c.Status(fiber.StatusOK).JSON(totals.View())
}
