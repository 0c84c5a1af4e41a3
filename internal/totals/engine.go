package totals

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sol1corejz/pledgetracker/internal/apperr"
	"github.com/sol1corejz/pledgetracker/internal/models"
	"github.com/sol1corejz/pledgetracker/internal/money"
)

type PaddleSource interface {
	PaddleTotal(ctx context.Context) (int64, error)
}

type TextSource interface {
	TextTotal(ctx context.Context) (int64, error)
}

// Engine recomputes totals from both stores on every call. Nothing is cached.
type Engine struct {
	paddle    PaddleSource
	text      TextSource
	goalCents int64
}

func NewEngine(paddle PaddleSource, text TextSource, goalCents int64) *Engine {
	return &Engine{paddle: paddle, text: text, goalCents: goalCents}
}

func (e *Engine) Compute(ctx context.Context) (models.Totals, error) {
	var paddleTotal, textTotal int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := e.paddle.PaddleTotal(gctx)
		if err != nil {
			return apperr.Dependency("failed to sum paddle pledges", err)
		}
		paddleTotal = total
		return nil
	})
	g.Go(func() error {
		total, err := e.text.TextTotal(gctx)
		if err != nil {
			return apperr.Dependency("failed to sum text pledges", err)
		}
		textTotal = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.Totals{}, err
	}

	grand := paddleTotal + textTotal
	return models.Totals{
		GrandTotal:     grand,
		PaddleTotal:    paddleTotal,
		TextTotal:      textTotal,
		GoalCents:      e.goalCents,
		GoalPercentage: money.GoalPercentage(grand, e.goalCents),
	}, nil
}
