package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

// maskFields turns the low six bits of m into a field set.
func maskFields(m int) []domain.FieldKey {
	out := []domain.FieldKey{}
	for i, f := range domain.AllFieldKeys {
		if m&(1<<i) != 0 {
			out = append(out, f)
		}
	}
	return out
}

func TestUnlockIsMonotonicUnion(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("unlock(F1); unlock(F2) == F1 ∪ F2 and repeats are no-ops", prop.ForAll(
		func(a, b int) bool {
			e := newEnv(t)
			ctx := context.Background()
			f1, f2 := maskFields(a), maskFields(b)

			if _, err := e.access.RecordFieldUnlock(ctx, "u", "P", f1); err != nil {
				return false
			}
			rec, err := e.access.RecordFieldUnlock(ctx, "u", "P", f2)
			if err != nil {
				return false
			}
			want := domain.UnionFields(f1, f2)
			if !slices.Equal(rec.Unlocked("P"), want) {
				return false
			}
			again, err := e.access.RecordFieldUnlock(ctx, "u", "P", f2)
			return err == nil && slices.Equal(again.Unlocked("P"), want) && again.QuotaUsed == 0
		},
		gen.IntRange(1, 63),
		gen.IntRange(1, 63),
	))

	properties.TestingRun(t)
}

func TestQuotaNeverExceedsLimit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("redemptions beyond the limit fail and change nothing", prop.ForAll(
		func(n int) bool {
			e := newEnv(t)
			ctx := context.Background()
			if _, err := e.access.SetMembership(ctx, "u", true); err != nil {
				return false
			}
			refused := 0
			for i := range n {
				parcel := fmt.Sprintf("P%d", i)
				_, err := e.access.RedeemQuotaUnlockAll(ctx, "u", parcel)
				switch {
				case err == nil:
				case errors.Is(err, port.ErrQuotaExceeded):
					refused++
					rec, _ := e.access.Read(ctx, "u")
					if _, ok := rec.UnlockedFields[parcel]; ok {
						return false
					}
				default:
					return false
				}
			}
			rec, err := e.access.Read(ctx, "u")
			if err != nil {
				return false
			}
			return rec.QuotaUsed == min(n, domain.QuotaLimit) && refused == max(0, n-domain.QuotaLimit)
		},
		gen.IntRange(0, 25),
	))

	properties.TestingRun(t)
}

func TestSlotUsageNeverExceedsCapacity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("reserve beyond capacity fails with SlotFull", prop.ForAll(
		func(web bool, n int) bool {
			e := newEnv(t)
			ctx := context.Background()
			ch := domain.ChannelLineAds
			if web {
				ch = domain.ChannelWeb
			}
			key := domain.SlotKey{Date: "2026-10-14", Channel: ch, Mode: "standard"}
			full := 0
			for range n {
				if _, err := e.slots.Reserve(ctx, key); err != nil {
					if !errors.Is(err, port.ErrSlotFull) {
						return false
					}
					full++
				}
			}
			info, err := e.slots.Info(ctx, key)
			if err != nil {
				return false
			}
			capacity := ch.DefaultCapacity()
			return info.Used == min(n, capacity) && info.Used <= info.Capacity && full == max(0, n-capacity)
		},
		gen.Bool(),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
