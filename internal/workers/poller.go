package workers

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
	"github.com/sol1corejz/pledgetracker/internal/metrics"
)

const pollJobName = "sms-pledge-poller"

type PledgeCounter interface {
	CountTextPledges(ctx context.Context) (int64, error)
}

type Broadcaster interface {
	BroadcastTotals(ctx context.Context)
}

// Poller watches the SMS pledge count and broadcasts totals whenever it grows.
type Poller struct {
	counter   PledgeCounter
	notifier  Broadcaster
	watermark *Watermark
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewPoller(counter PledgeCounter, notifier Broadcaster, watermark *Watermark, interval time.Duration) *Poller {
	return &Poller{
		counter:   counter,
		notifier:  notifier,
		watermark: watermark,
		interval:  interval,
	}
}

// Tick samples the count once. A failed sample leaves the watermark as is.
func (p *Poller) Tick(ctx context.Context) {
	_, epoch := p.watermark.Snapshot()

	count, err := p.counter.CountTextPledges(ctx)
	if err != nil {
		metrics.PollTicks.WithLabelValues(metrics.ResultError).Inc()
		logger.Log.Error("Error checking for new text pledges", zap.Error(err))
		return
	}

	if !p.watermark.Advance(epoch, count) {
		metrics.PollTicks.WithLabelValues(metrics.ResultIdle).Inc()
		return
	}

	metrics.PollTicks.WithLabelValues(metrics.ResultChanged).Inc()
	logger.Log.Info("New text pledges detected", zap.Int64("count", count))
	p.notifier.BroadcastTotals(ctx)
}

// Start schedules Tick every interval. A tick still running when the next
// one is due delays it, so ticks never overlap.
func (p *Poller) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "failed to create scheduler")
	}

	_, err = s.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(func() { p.Tick(context.Background()) }),
		gocron.WithName(pollJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.Shutdown()
		return errors.Wrapf(err, "failed to register job %s", pollJobName)
	}

	s.Start()
	p.scheduler = s

	logger.Log.Info("SMS pledge poller started", zap.Duration("interval", p.interval))
	return nil
}

func (p *Poller) Stop() error {
	if p.scheduler == nil {
		return nil
	}
	if err := p.scheduler.Shutdown(); err != nil {
		return errors.Wrap(err, "failed to shutdown scheduler")
	}
	logger.Log.Info("SMS pledge poller stopped")
	return nil
}
