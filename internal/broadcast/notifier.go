package broadcast

import (
	"context"

	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
	"github.com/sol1corejz/pledgetracker/internal/metrics"
	"github.com/sol1corejz/pledgetracker/internal/models"
)

type TotalsComputer interface {
	Compute(ctx context.Context) (models.Totals, error)
}

// Notifier computes a fresh totals snapshot and publishes it as totals_updated.
type Notifier struct {
	totals    TotalsComputer
	publisher Publisher
}

func NewNotifier(totals TotalsComputer, publisher Publisher) *Notifier {
	return &Notifier{totals: totals, publisher: publisher}
}

// BroadcastTotals never fails the caller. Errors are logged and counted.
func (n *Notifier) BroadcastTotals(ctx context.Context) {
	totals, err := n.totals.Compute(ctx)
	if err != nil {
		metrics.Broadcasts.WithLabelValues(metrics.ResultError).Inc()
		logger.Log.Error("Failed to compute totals for broadcast", zap.Error(err))
		return
	}

	if err := n.publisher.Publish(ctx, models.EventTotalsUpdated, totals.View()); err != nil {
		metrics.Broadcasts.WithLabelValues(metrics.ResultError).Inc()
		logger.Log.Error("Failed to publish totals", zap.Error(err))
		return
	}

	metrics.Broadcasts.WithLabelValues(metrics.ResultSuccess).Inc()
	logger.Log.Debug("Totals broadcast", zap.Int64("grand_total", totals.GrandTotal))
}
