package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

var campaignsDoc = doc[[]domain.Campaign]{
	key:   port.KeyCampaigns,
	empty: func() []domain.Campaign { return []domain.Campaign{} },
	repair: func(l *[]domain.Campaign) bool {
		n := len(*l)
		*l = slices.DeleteFunc(*l, func(c domain.Campaign) bool { return c.ID == "" })
		if *l == nil {
			*l = []domain.Campaign{}
		}
		return len(*l) != n
	},
}

// CampaignScheduler creates broadcast campaigns against slot capacity and
// promotes them to published on broadcast days.
type CampaignScheduler struct {
	slots  port.SlotUseCase
	docs   *docStore
	clock  port.Clock
	logger *slog.Logger
}

var _ port.SchedulerUseCase = (*CampaignScheduler)(nil)

// NewCampaignScheduler returns a scheduler keeping its campaign list in store.
func NewCampaignScheduler(slots port.SlotUseCase, store port.LedgerStore, clock port.Clock, logger *slog.Logger, opts Options) *CampaignScheduler {
	return &CampaignScheduler{
		slots:  slots,
		docs:   newDocStore(store, logger, opts),
		clock:  clock,
		logger: logger,
	}
}

// NextEligibleDates returns the next n broadcast dates counting from.
func (s *CampaignScheduler) NextEligibleDates(n int, from time.Time) []string {
	return domain.NextEligibleDates(n, from)
}

func (s *CampaignScheduler) validate(req port.CreateCampaignReq) ([]domain.Channel, error) {
	if req.Parcel == nil || req.Parcel.ID == "" {
		return nil, port.ErrNoLand
	}
	channels := domain.NormalizeChannels(req.Channels)
	if len(channels) == 0 {
		return nil, port.ErrNoChannel
	}
	for _, c := range channels {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", port.ErrUnknownChannel, c)
		}
	}
	if req.ScheduleDate == "" {
		return nil, port.ErrNoDate
	}
	if req.Mode == "" {
		return nil, port.ErrNoMode
	}
	if !domain.ValidMode(req.Mode) {
		return nil, fmt.Errorf("%w: %q", port.ErrInvalidMode, req.Mode)
	}
	if !domain.IsBroadcastDate(req.ScheduleDate) || req.ScheduleDate < s.clock.Today() {
		return nil, fmt.Errorf("%w: %s", port.ErrDateNotEligible, req.ScheduleDate)
	}
	return channels, nil
}

// CreateCampaign reserves a slot on every requested channel and stores the
// campaign. Reservation is all or nothing: if any channel is full, the
// channels already reserved are released before the error is returned.
func (s *CampaignScheduler) CreateCampaign(ctx context.Context, req port.CreateCampaignReq) (*domain.Campaign, error) {
	channels, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	reserved := make([]domain.SlotKey, 0, len(channels))
	for _, ch := range channels {
		key := domain.SlotKey{Date: req.ScheduleDate, Channel: ch, Mode: req.Mode}
		if _, err = s.slots.Reserve(ctx, key); err != nil {
			s.release(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, key)
	}

	now := s.clock.Now()
	c := domain.Campaign{
		ID:            uuid.NewString(),
		Parcel:        *req.Parcel,
		Mode:          req.Mode,
		Channels:      channels,
		Highlight:     req.Highlight,
		PriceTHB:      req.PriceTHB,
		ScheduleDate:  req.ScheduleDate,
		Status:        domain.InitialStatus(req.CreatedByRole, req.PriceTHB),
		CreatedByRole: req.CreatedByRole,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err = update(ctx, s.docs, campaignsDoc, func(l *[]domain.Campaign) error {
		*l = append(slices.Clone(*l), c)
		return nil
	})
	if err != nil {
		s.release(ctx, reserved)
		return nil, fmt.Errorf("store campaign: %w", err)
	}

	s.logger.Info("campaign created",
		slog.String("id", c.ID),
		slog.String("parcel_id", c.Parcel.ID),
		slog.String("date", c.ScheduleDate),
		slog.String("status", string(c.Status)),
	)
	return &c, nil
}

// release gives back reservations made for a campaign that will not exist.
// It runs even when ctx is already cancelled.
func (s *CampaignScheduler) release(ctx context.Context, keys []domain.SlotKey) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if _, err := s.slots.Release(ctx, key); err != nil {
			s.logger.Error("failed to release slot", slog.String("slot", key.String()), slog.Any("error", err))
		}
	}
}

// PublishDueCampaigns marks every scheduled or paid campaign whose date has
// arrived as published. Nothing happens unless now is a broadcast day;
// overdue campaigns wait for the next one.
func (s *CampaignScheduler) PublishDueCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error) {
	if !domain.IsBroadcastWeekday(now.Weekday()) {
		return []domain.Campaign{}, nil
	}
	today := domain.DateKey(now)

	var published []domain.Campaign
	_, err := update(ctx, s.docs, campaignsDoc, func(l *[]domain.Campaign) error {
		published = []domain.Campaign{}
		next := slices.Clone(*l)
		for i := range next {
			c := &next[i]
			if !c.Status.Due() || c.ScheduleDate > today {
				continue
			}
			at := now
			c.Status = domain.StatusPublished
			c.PublishedAt = &at
			c.UpdatedAt = now
			published = append(published, *c)
		}
		if len(published) == 0 {
			return errNoChange
		}
		*l = next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("publish due campaigns: %w", err)
	}
	if len(published) > 0 {
		s.logger.Info("campaigns published", slog.String("date", today), slog.Int("count", len(published)))
	}
	return published, nil
}

// List returns all campaigns in creation order.
func (s *CampaignScheduler) List(ctx context.Context) ([]domain.Campaign, error) {
	return load(ctx, s.docs, campaignsDoc), nil
}

// Get returns one campaign.
func (s *CampaignScheduler) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	l := load(ctx, s.docs, campaignsDoc)
	i := slices.IndexFunc(l, func(c domain.Campaign) bool { return c.ID == id })
	if i < 0 {
		return nil, port.ErrCampaignNotFound
	}
	return &l[i], nil
}

// Disable takes a campaign out of the schedule. Its slots stay reserved so
// that Enable can put it back.
func (s *CampaignScheduler) Disable(ctx context.Context, id, reason string) (*domain.Campaign, error) {
	return s.transition(ctx, id, domain.StatusDisabled, func(c *domain.Campaign) {
		c.DisabledReason = reason
	})
}

// Enable returns a disabled campaign to scheduled.
func (s *CampaignScheduler) Enable(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.transition(ctx, id, domain.StatusScheduled, func(c *domain.Campaign) {
		c.DisabledReason = ""
	})
}

// MarkSent records that a published campaign went out.
func (s *CampaignScheduler) MarkSent(ctx context.Context, id string) (*domain.Campaign, error) {
	return s.transition(ctx, id, domain.StatusSent, func(c *domain.Campaign) {
		at := c.UpdatedAt
		c.SentAt = &at
	})
}

func (s *CampaignScheduler) transition(ctx context.Context, id string, to domain.CampaignStatus, apply func(*domain.Campaign)) (*domain.Campaign, error) {
	now := s.clock.Now()
	var out domain.Campaign
	_, err := update(ctx, s.docs, campaignsDoc, func(l *[]domain.Campaign) error {
		i := slices.IndexFunc(*l, func(c domain.Campaign) bool { return c.ID == id })
		if i < 0 {
			return port.ErrCampaignNotFound
		}
		from := (*l)[i].Status
		if !from.CanTransition(to) {
			return fmt.Errorf("%w: %s to %s", port.ErrInvalidTransition, from, to)
		}
		next := slices.Clone(*l)
		next[i].Status = to
		next[i].UpdatedAt = now
		apply(&next[i])
		out = next[i]
		*l = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign status changed", slog.String("id", id), slog.String("status", string(to)))
	return &out, nil
}

// Delete removes a campaign. A campaign that never published gives its
// slots back.
func (s *CampaignScheduler) Delete(ctx context.Context, id string) error {
	var removed domain.Campaign
	_, err := update(ctx, s.docs, campaignsDoc, func(l *[]domain.Campaign) error {
		i := slices.IndexFunc(*l, func(c domain.Campaign) bool { return c.ID == id })
		if i < 0 {
			return port.ErrCampaignNotFound
		}
		removed = (*l)[i]
		*l = slices.Delete(slices.Clone(*l), i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	if removed.PublishedAt == nil {
		keys := make([]domain.SlotKey, 0, len(removed.Channels))
		for _, ch := range removed.Channels {
			keys = append(keys, domain.SlotKey{Date: removed.ScheduleDate, Channel: ch, Mode: removed.Mode})
		}
		s.release(ctx, keys)
	}
	s.logger.Info("campaign deleted", slog.String("id", id))
	return nil
}

