package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sol1corejz/pledgetracker/internal/models"
	"github.com/sol1corejz/pledgetracker/internal/money"
)

const localTimeLayout = "Jan 2, 2006 3:04 PM MST"

type TextPledgeResponse struct {
	ID              int64     `json:"id"`
	AmountCents     int64     `json:"amount_cents"`
	AmountDollars   string    `json:"amount_dollars"`
	PhoneNumber     string    `json:"phone_number"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedAtLocal  string    `json:"created_at_local"`
	AmountFormatted string    `json:"amountFormatted"`
}

func (h *Handler) newTextPledgeResponse(p models.TextPledge) TextPledgeResponse {
	cents := p.AmountCents()
	return TextPledgeResponse{
		ID:              p.ID,
		AmountCents:     cents,
		AmountDollars:   money.ToDollars(cents).StringFixed(2),
		PhoneNumber:     p.PhoneNumber,
		Message:         p.MessageText,
		CreatedAt:       p.CreatedAt,
		CreatedAtLocal:  p.CreatedAt.In(h.location).Format(localTimeLayout),
		AmountFormatted: money.Format(cents),
	}
}

func (h *Handler) GetTextPledgesHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	pledges, err := h.sms.RecentTextPledges(ctx, h.textLimit)
	if err != nil {
		return respondError(c, err, "Failed to fetch text pledges")
	}

	resp := make([]TextPledgeResponse, 0, len(pledges))
	for _, p := range pledges {
		resp = append(resp, h.newTextPledgeResponse(p))
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
