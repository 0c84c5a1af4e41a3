package handlers

import (
	"context"
	"time"

	"github.com/sol1corejz/pledgetracker/internal/broadcast"
	"github.com/sol1corejz/pledgetracker/internal/models"
)

type PaddleStore interface {
	ListPaddlePledges(ctx context.Context) ([]models.PaddlePledge, error)
	UpdatePaddleCount(ctx context.Context, tierCents, count int64) (models.PaddlePledge, error)
	ResetPaddlePledges(ctx context.Context) error
	Ping(ctx context.Context) error
}

type SMSStore interface {
	RecentTextPledges(ctx context.Context, limit int) ([]models.TextPledge, error)
	DeleteTextPledges(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type TotalsComputer interface {
	Compute(ctx context.Context) (models.Totals, error)
}

type Broadcaster interface {
	BroadcastTotals(ctx context.Context)
}

// Baseline is the change detector state that resets must clear.
type Baseline interface {
	Reset()
}

type ClientHub interface {
	Serve(conn broadcast.Conn)
}

type Handler struct {
	paddle   PaddleStore
	sms      SMSStore
	totals   TotalsComputer
	notifier Broadcaster
	baseline Baseline
	hub      ClientHub

	timeout   time.Duration
	textLimit int
	location  *time.Location
}

type Options struct {
	Timeout   time.Duration
	TextLimit int
	Location  *time.Location
}

func New(paddle PaddleStore, sms SMSStore, totals TotalsComputer, notifier Broadcaster, baseline Baseline, hub ClientHub, opts Options) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Handler{
		paddle:    paddle,
		sms:       sms,
		totals:    totals,
		notifier:  notifier,
		baseline:  baseline,
		hub:       hub,
		timeout:   opts.Timeout,
		textLimit: opts.TextLimit,
		location:  opts.Location,
	}
}
