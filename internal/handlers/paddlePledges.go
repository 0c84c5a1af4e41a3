package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/apperr"
	"github.com/sol1corejz/pledgetracker/internal/logger"
	"github.com/sol1corejz/pledgetracker/internal/metrics"
	"github.com/sol1corejz/pledgetracker/internal/models"
	"github.com/sol1corejz/pledgetracker/internal/money"
)

const invalidCountMessage = "Count must be a non-negative number"

type PaddlePledgeResponse struct {
	TierCents      int64     `json:"tier_cents"`
	Count          int64     `json:"count"`
	TotalCents     int64     `json:"total_cents"`
	TierDollars    int64     `json:"tier_dollars"`
	UpdatedAt      time.Time `json:"updated_at"`
	TierFormatted  string    `json:"tierFormatted"`
	TotalFormatted string    `json:"totalFormatted"`
}

func newPaddlePledgeResponse(p models.PaddlePledge) PaddlePledgeResponse {
	return PaddlePledgeResponse{
		TierCents:      p.TierCents,
		Count:          p.Count,
		TotalCents:     p.TotalCents,
		TierDollars:    p.TierCents / 100,
		UpdatedAt:      p.UpdatedAt,
		TierFormatted:  money.Format(p.TierCents),
		TotalFormatted: money.Format(p.TotalCents),
	}
}

func (h *Handler) GetPaddlePledgesHandler(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	pledges, err := h.paddle.ListPaddlePledges(ctx)
	if err != nil {
		return respondError(c, err, "Failed to fetch paddle pledges")
	}

	resp := make([]PaddlePledgeResponse, 0, len(pledges))
	for _, p := range pledges {
		resp = append(resp, newPaddlePledgeResponse(p))
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

type UpdatePaddlePledgeRequest struct {
	Count json.RawMessage `json:"count"`
}

// parseCount accepts only a JSON integer. Strings, fractions and null are rejected.
func parseCount(body []byte) (int64, error) {
	var req UpdatePaddlePledgeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return 0, apperr.Validation(invalidCountMessage)
	}

	raw := bytes.TrimSpace(req.Count)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, apperr.Validation(invalidCountMessage)
	}

	var count int64
	if err := json.Unmarshal(raw, &count); err != nil || count < 0 {
		return 0, apperr.Validation(invalidCountMessage)
	}

	return count, nil
}

func (h *Handler) UpdatePaddlePledgeHandler(c *fiber.Ctx) error {
	tier, err := strconv.ParseInt(c.Params("tierCents"), 10, 64)
	if err != nil || tier <= 0 {
		return respondError(c, apperr.Validation("Tier must be a positive number of cents"), "Failed to update paddle pledge")
	}

	count, err := parseCount(c.Body())
	if err != nil {
		return respondError(c, err, "Failed to update paddle pledge")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	updated, err := h.paddle.UpdatePaddleCount(ctx, tier, count)
	if err != nil {
		return respondError(c, err, "Failed to update paddle pledge")
	}

	metrics.PledgeUpdates.Inc()
	logger.Log.Info("Paddle pledge updated", zap.Int64("tier_cents", tier), zap.Int64("count", count))

	h.notifier.BroadcastTotals(ctx)

	return c.Status(fiber.StatusOK).JSON(newPaddlePledgeResponse(updated))
}
