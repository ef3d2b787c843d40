package db

import (
	"context"
	"fmt"
	"log/slog"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

// DemoActor is the member account created by Seed.
const DemoActor = "demo-member"

var demoParcels = []domain.ParcelSnapshot{
	{ID: "CM-0142", Title: "Riverside orchard, 4 rai", Province: "Chiang Mai", PriceTHB: 3_800_000},
	{ID: "KB-0917", Title: "Hillside plot with sea view", Province: "Krabi", PriceTHB: 6_500_000},
	{ID: "NMA-0033", Title: "Flat farmland near highway 2", Province: "Nakhon Ratchasima", PriceTHB: 1_250_000},
}

// Seed writes demo data: a member actor with some fields already unlocked
// and one campaign per demo parcel on the upcoming broadcast dates. It does
// nothing when campaigns already exist.
func Seed(ctx context.Context, access port.AccessUseCase, sched port.SchedulerUseCase, clock port.Clock, logger *slog.Logger) error {
	existing, err := sched.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("demo data already present, skipping seed")
		return nil
	}

	if _, err = access.SetMembership(ctx, DemoActor, true); err != nil {
		return fmt.Errorf("seed membership: %w", err)
	}
	if _, err = access.RecordFieldUnlock(ctx, DemoActor, demoParcels[0].ID, []domain.FieldKey{domain.FieldPhone, domain.FieldLine}); err != nil {
		return fmt.Errorf("seed unlock: %w", err)
	}

	dates := sched.NextEligibleDates(len(demoParcels), clock.Now())
	for i, p := range demoParcels {
		role, price := domain.RoleAdmin, int64(0)
		if i%2 == 1 {
			role, price = domain.RoleAgent, 990
		}
		_, err = sched.CreateCampaign(ctx, port.CreateCampaignReq{
			Parcel:        &p,
			Mode:          "standard",
			Channels:      domain.AllChannels,
			Highlight:     i == 0,
			PriceTHB:      price,
			ScheduleDate:  dates[i],
			CreatedByRole: role,
		})
		if err != nil {
			return fmt.Errorf("seed campaign for %s: %w", p.ID, err)
		}
	}
	logger.Info("demo data seeded", slog.String("actor", DemoActor), slog.Int("campaigns", len(demoParcels)))
	return nil
}
