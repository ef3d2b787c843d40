package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landmarket/internal/adapter/clock"
	"landmarket/internal/adapter/memory"
	"landmarket/internal/adapter/usecase"
	"landmarket/internal/adapter/worker"
	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

var (
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	tuesday = time.Date(2026, time.October, 13, 9, 0, 0, 0, time.UTC)
)

func TestPublisher_PublishesOnBroadcastDays(t *testing.T) {
	store := memory.NewLedgerStore()
	clk := clock.NewFixed(tuesday)
	opts := usecase.Options{RetryDelay: time.Millisecond}
	sched := usecase.NewCampaignScheduler(usecase.NewSlotLedger(store, logger, opts), store, clk, logger, opts)

	c, err := sched.CreateCampaign(context.Background(), port.CreateCampaignReq{
		Parcel:        &domain.ParcelSnapshot{ID: "L1"},
		Mode:          "standard",
		Channels:      []domain.Channel{domain.ChannelWeb},
		ScheduleDate:  "2026-10-14",
		CreatedByRole: domain.RoleAdmin,
	})
	require.NoError(t, err)

	pub := worker.NewPublisher(sched, clk, 5*time.Millisecond, logger)
	assert.Zero(t, pub.RunOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pub.Run(ctx)
		close(done)
	}()

	clk.Advance(24 * time.Hour)
	assert.Eventually(t, func() bool {
		got, err := sched.Get(context.Background(), c.ID)
		return err == nil && got.Status == domain.StatusPublished
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop")
	}
}

type failingScheduler struct {
	port.SchedulerUseCase
	calls atomic.Int32
}

func (s *failingScheduler) PublishDueCampaigns(context.Context, time.Time) ([]domain.Campaign, error) {
	s.calls.Add(1)
	return nil, errors.New("store offline")
}

func TestPublisher_KeepsRunningAfterErrors(t *testing.T) {
	sched := &failingScheduler{}
	pub := worker.NewPublisher(sched, clock.NewFixed(tuesday), time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	assert.Eventually(t, func() bool { return sched.calls.Load() >= 3 }, 2*time.Second, time.Millisecond)
}
