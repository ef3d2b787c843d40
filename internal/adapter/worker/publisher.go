// Package worker runs background jobs of the scheduler.
package worker

import (
	"context"
	"log/slog"
	"time"

	"landmarket/internal/core/port"
)

// Publisher promotes due campaigns on a fixed interval. It runs one pass
// immediately so campaigns due while the process was down are published
// on start. Errors of a pass are logged and the next tick tries again.
type Publisher struct {
	sched    port.SchedulerUseCase
	clock    port.Clock
	interval time.Duration
	logger   *slog.Logger
}

func NewPublisher(sched port.SchedulerUseCase, clock port.Clock, interval time.Duration, logger *slog.Logger) *Publisher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Publisher{sched: sched, clock: clock, interval: interval, logger: logger}
}

// Run publishes once immediately and then every interval until ctx is done.
// Failed passes are logged and retried on the next tick.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("campaign publisher started", slog.Duration("interval", p.interval))
	for {
		p.RunOnce(ctx)
		select {
		case <-ctx.Done():
			p.logger.Info("campaign publisher stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs one publication pass and returns how many campaigns it
// published.
func (p *Publisher) RunOnce(ctx context.Context) int {
	published, err := p.sched.PublishDueCampaigns(ctx, p.clock.Now())
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("publish due campaigns", slog.Any("error", err))
		}
		return 0
	}
	return len(published)
}
