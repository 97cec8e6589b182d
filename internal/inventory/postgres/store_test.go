package postgres

import (
	"context"
	"errors"
	"testing"

	inventoryerrors "weekchain/internal/inventory/errors"
	"weekchain/internal/testutil"
	"weekchain/pkg/calendar"
	"weekchain/pkg/model"
)

func TestStore(t *testing.T) {
	pool := testutil.NewTestPool(t)
	store := NewStore(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	seed := func(t *testing.T, ctx context.Context) {
		t.Helper()
		testutil.TruncateAll(t, ctx, pool)
		units := []*model.InventoryUnit{
			{ID: "u-b", AssetID: "a1", Country: "Mexico", City: "Tulum", Category: "beach", Tier: model.TierGold, MaxOccupancy: 6, Status: model.UnitStatusActive},
			{ID: "u-a", AssetID: "a2", Country: "USA", City: "Aspen", Category: "ski", Tier: model.TierSilver, MaxOccupancy: 2, Status: model.UnitStatusActive},
			{ID: "u-c", AssetID: "a3", Country: "Spain", City: "Ibiza", Category: "beach", Tier: model.TierGold, MaxOccupancy: 8, Status: model.UnitStatusInactive},
		}
		for _, u := range units {
			if err := store.UpsertUnit(ctx, u); err != nil {
				t.Fatalf("upsert: %v", err)
			}
		}
	}

	t.Run("ListActiveUnits applies the hard filter", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		units, err := store.ListActiveUnits(ctx, model.UnitFilter{MinOccupancy: 4})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(units) != 1 || units[0].ID != "u-b" {
			t.Fatalf("unexpected units: %+v", units)
		}

		units, err = store.ListActiveUnits(ctx, model.UnitFilter{MinOccupancy: 1, Tier: model.TierSilver})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(units) != 1 || units[0].ID != "u-a" {
			t.Fatalf("unexpected units for tier filter: %+v", units)
		}
	})

	t.Run("FindByID returns ErrUnitNotFound", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		if _, err := store.FindByID(ctx, "missing"); !errors.Is(err, inventoryerrors.ErrUnitNotFound) {
			t.Fatalf("expected ErrUnitNotFound, got %v", err)
		}
	})

	t.Run("ListConfirmedReservations skips cancelled", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		in := calendar.MustParse("2026-06-06")
		confirmed := &model.Reservation{ID: "r1", UnitID: "u-b", CheckIn: in, CheckOut: in.AddDays(7), PartySize: 2, HolderID: "h1", Status: model.ReservationConfirmed}
		cancelled := &model.Reservation{ID: "r2", UnitID: "u-b", CheckIn: in.AddDays(7), CheckOut: in.AddDays(14), PartySize: 2, HolderID: "h2", Status: model.ReservationCancelled}

		err := store.WithTx(ctx, func(txCtx context.Context) error {
			if err := store.UpsertReservation(txCtx, confirmed); err != nil {
				return err
			}
			return store.UpsertReservation(txCtx, cancelled)
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		ranges, err := store.ListConfirmedReservations(ctx, "u-b")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(ranges) != 1 || !ranges[0].Start.Equal(in) || ranges[0].Nights() != 7 {
			t.Fatalf("unexpected ranges: %v", ranges)
		}
	})

	t.Run("UpsertReservation treats cancellation as terminal", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		in := calendar.MustParse("2026-07-04")
		r := &model.Reservation{ID: "r1", UnitID: "u-b", CheckIn: in, CheckOut: in.AddDays(7), PartySize: 2, HolderID: "h1", Status: model.ReservationConfirmed}
		if err := store.UpsertReservation(ctx, r); err != nil {
			t.Fatalf("confirm: %v", err)
		}

		cancelled := *r
		cancelled.Status = model.ReservationCancelled
		if err := store.UpsertReservation(ctx, &cancelled); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		// Redelivered confirmation arriving after the cancel.
		if err := store.UpsertReservation(ctx, r); err != nil {
			t.Fatalf("redeliver: %v", err)
		}

		ranges, err := store.ListConfirmedReservations(ctx, "u-b")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(ranges) != 0 {
			t.Fatalf("cancelled reservation came back: %v", ranges)
		}
	})

	t.Run("UpsertReservation reports unknown units", func(t *testing.T) {
		ctx := context.Background()
		seed(t, ctx)

		in := calendar.MustParse("2026-07-04")
		r := &model.Reservation{ID: "r9", UnitID: "missing", CheckIn: in, CheckOut: in.AddDays(7), PartySize: 2, HolderID: "h1", Status: model.ReservationConfirmed}
		if err := store.UpsertReservation(ctx, r); !errors.Is(err, inventoryerrors.ErrUnitNotFound) {
			t.Fatalf("expected ErrUnitNotFound, got %v", err)
		}
	})
}
