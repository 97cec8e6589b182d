package service

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"weekchain/internal/matching/validator"
	"weekchain/pkg/calendar"
	"weekchain/pkg/config"
	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"
)

// ────────────────────────────────────────────────
// Mock stores for testing
// ────────────────────────────────────────────────

type mockUnitReader struct {
	listActiveUnitsFunc func(ctx context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error)
	calls               atomic.Int32
}

func (m *mockUnitReader) ListActiveUnits(ctx context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error) {
	m.calls.Add(1)
	if m.listActiveUnitsFunc != nil {
		return m.listActiveUnitsFunc(ctx, filter)
	}
	return []*model.InventoryUnit{}, nil
}

type mockReservationReader struct {
	byUnit map[string][]model.DateRange
	err    error
}

func (m *mockReservationReader) ListConfirmedReservations(ctx context.Context, unitID string) ([]model.DateRange, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byUnit[unitID], nil
}

// staticUnits mimics a store honouring the hard filter.
func staticUnits(units ...*model.InventoryUnit) *mockUnitReader {
	return &mockUnitReader{
		listActiveUnitsFunc: func(_ context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error) {
			var out []*model.InventoryUnit
			for _, u := range units {
				if filter.Tier != "" && u.Tier != filter.Tier {
					continue
				}
				if u.IsActive() && u.MaxOccupancy >= filter.MinOccupancy {
					out = append(out, u)
				}
			}
			return out, nil
		},
	}
}

func newTestService(units UnitReader, reservations ReservationReader) MatchService {
	log := logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.JSON,
		Output: io.Discard,
	})
	cfg := config.Default(log)
	return NewMatchService(units, reservations, validator.NewMatchValidator(log), cfg)
}

func tieredUnit(id string, tier model.Tier) *model.InventoryUnit {
	u := unit(id, "Tulum", "Mexico", "beach", 6)
	u.Tier = tier
	return u
}

func unit(id, city, country, category string, maxOcc int) *model.InventoryUnit {
	return &model.InventoryUnit{
		ID:           id,
		AssetID:      "asset-" + id,
		City:         city,
		Country:      country,
		Category:     category,
		Tier:         model.TierGold,
		MaxOccupancy: maxOcc,
		Status:       model.UnitStatusActive,
	}
}

func week(start string) model.DateRange {
	s := calendar.MustParse(start)
	return model.NewDateRange(s, s.AddDays(7))
}

func request(start string, flex, party int) *model.MatchRequest {
	rng := week(start)
	return &model.MatchRequest{Start: rng.Start, End: rng.End, FlexDays: flex, PartySize: party}
}

// ────────────────────────────────────────────────
// Tests for FindBestMatch()
// ────────────────────────────────────────────────

func TestFindBestMatch_ExactBeatsFlexible(t *testing.T) {
	units := staticUnits(
		unit("a", "Tulum", "Mexico", "beach", 10),
		unit("b", "Aspen", "USA", "ski", 10),
	)
	reservations := &mockReservationReader{byUnit: map[string][]model.DateRange{
		"a": {week("2026-06-06")},
	}}

	svc := newTestService(units, reservations)

	got, err := svc.FindBestMatch(context.Background(), request("2026-06-06", 14, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Unit.ID != "b" {
		t.Fatalf("expected exact match on b, got %+v", got)
	}
	if !got.IsExact() || got.Score != 100 {
		t.Errorf("expected exact score 100, got score=%d offset=%d", got.Score, got.OffsetDays)
	}
}

func TestFindBestMatch_FlexibleEarlierFirst(t *testing.T) {
	units := staticUnits(unit("a", "Tulum", "Mexico", "beach", 10))
	reservations := &mockReservationReader{byUnit: map[string][]model.DateRange{
		"a": {week("2026-06-06")},
	}}

	got, err := newTestService(units, reservations).FindBestMatch(context.Background(), request("2026-06-06", 14, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected flexible match")
	}
	if got.OffsetDays != -7 || got.Score != 73 {
		t.Errorf("expected offset -7 score 73, got offset=%d score=%d", got.OffsetDays, got.Score)
	}
	if got.Start.String() != "2026-05-30" || got.End.String() != "2026-06-06" {
		t.Errorf("unexpected resolved range %s - %s", got.Start, got.End)
	}
}

func TestFindBestMatch_NoFlexibilityNoMatch(t *testing.T) {
	units := staticUnits(unit("a", "Tulum", "Mexico", "beach", 10))
	reservations := &mockReservationReader{byUnit: map[string][]model.DateRange{
		"a": {week("2026-06-06")},
	}}

	got, err := newTestService(units, reservations).FindBestMatch(context.Background(), request("2026-06-06", 0, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no match, got %+v", got)
	}
}

func TestFindBestMatch_HardFilterIsAbsolute(t *testing.T) {
	inactive := unit("c", "Tulum", "Mexico", "beach", 10)
	inactive.Status = model.UnitStatusInactive

	// A store that ignores the filter must not leak small or inactive units.
	units := &mockUnitReader{
		listActiveUnitsFunc: func(context.Context, model.UnitFilter) ([]*model.InventoryUnit, error) {
			return []*model.InventoryUnit{unit("a", "Tulum", "Mexico", "beach", 2), inactive}, nil
		},
	}

	got, err := newTestService(units, &mockReservationReader{}).FindBestMatch(context.Background(), request("2026-06-06", 0, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestFindBestMatch_SoftFilterFallsBack(t *testing.T) {
	units := staticUnits(unit("a", "Aspen", "USA", "ski", 10))

	req := request("2026-06-06", 0, 2)
	req.Destination = "Lisbon"
	req.Category = "beach"

	got, err := newTestService(units, &mockReservationReader{}).FindBestMatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Unit.ID != "a" {
		t.Fatalf("expected fallback to a, got %+v", got)
	}
}

func TestFindBestMatch_TieKeepsIDOrder(t *testing.T) {
	units := &mockUnitReader{
		listActiveUnitsFunc: func(context.Context, model.UnitFilter) ([]*model.InventoryUnit, error) {
			return []*model.InventoryUnit{
				unit("z", "Tulum", "Mexico", "beach", 10),
				unit("m", "Tulum", "Mexico", "beach", 10),
			}, nil
		},
	}

	got, err := newTestService(units, &mockReservationReader{}).FindBestMatch(context.Background(), request("2026-06-06", 0, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Unit.ID != "m" {
		t.Errorf("expected lowest id on tie, got %s", got.Unit.ID)
	}
}

func TestFindBestMatch_InvalidRangeSkipsStore(t *testing.T) {
	units := staticUnits(unit("a", "Tulum", "Mexico", "beach", 10))
	svc := newTestService(units, &mockReservationReader{})

	req := request("2026-06-06", 0, 2)
	req.End = req.Start

	_, err := svc.FindBestMatch(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if units.calls.Load() != 0 {
		t.Error("store must not be read for invalid requests")
	}
}

func TestFindBestMatch_FlexibilityCap(t *testing.T) {
	svc := newTestService(staticUnits(), &mockReservationReader{})
	_, err := svc.FindBestMatch(context.Background(), request("2026-06-06", config.DefaultMatchMaxFlexDays+7, 2))
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestFindBestMatch_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	units := staticUnits(unit("a", "Tulum", "Mexico", "beach", 10))

	_, err := newTestService(units, &mockReservationReader{err: storeErr}).FindBestMatch(context.Background(), request("2026-06-06", 0, 2))
	if !apperrors.HasCode(err, apperrors.CodeUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	if !errors.Is(err, storeErr) {
		t.Error("store error should stay reachable through errors.Is")
	}
}

// ────────────────────────────────────────────────
// Tests for FindAlternatives()
// ────────────────────────────────────────────────

func TestFindAlternatives_ExcludesAndLimits(t *testing.T) {
	var all []*model.InventoryUnit
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		all = append(all, unit(id, "Tulum", "Mexico", "beach", 6))
	}
	reservations := &mockReservationReader{byUnit: map[string][]model.DateRange{
		"b": {week("2026-06-06")},
	}}
	svc := newTestService(staticUnits(all...), reservations)

	got, err := svc.FindAlternatives(context.Background(), "a", request("2026-06-06", 0, 2), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != config.DefaultMatchAlternativesLimit {
		t.Fatalf("expected %d alternatives, got %d", config.DefaultMatchAlternativesLimit, len(got))
	}

	want := []string{"c", "d", "e", "f", "g"}
	for i, alt := range got {
		if alt.Unit.ID != want[i] {
			t.Errorf("alternative %d = %s, want %s", i, alt.Unit.ID, want[i])
		}
		if alt.Score != 50 || alt.OffsetDays != 0 {
			t.Errorf("alternative %s score=%d offset=%d", alt.Unit.ID, alt.Score, alt.OffsetDays)
		}
	}
}

func TestFindAlternatives_RespectsExplicitLimit(t *testing.T) {
	svc := newTestService(staticUnits(
		unit("a", "Tulum", "Mexico", "beach", 6),
		unit("b", "Tulum", "Mexico", "beach", 6),
		unit("c", "Tulum", "Mexico", "beach", 6),
	), &mockReservationReader{})

	got, err := svc.FindAlternatives(context.Background(), "", request("2026-06-06", 0, 2), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 alternatives, got %d", len(got))
	}
}

func TestFindAlternatives_IgnoresPreferences(t *testing.T) {
	svc := newTestService(staticUnits(
		unit("a", "Tulum", "Mexico", "beach", 6),
		unit("b", "Aspen", "USA", "ski", 6),
	), &mockReservationReader{})

	req := request("2026-06-06", 0, 2)
	req.Destination = "Tulum"

	got, err := svc.FindAlternatives(context.Background(), "a", req, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Unit.ID != "b" {
		t.Errorf("expected only b, got %+v", got)
	}
}

// ────────────────────────────────────────────────
// Tier scoping
// ────────────────────────────────────────────────

func TestFindBestMatch_NeverOffersAnotherTier(t *testing.T) {
	units := staticUnits(
		tieredUnit("a-gold", model.TierGold),
		tieredUnit("b-silver", model.TierSilver),
	)
	svc := newTestService(units, &mockReservationReader{})

	req := request("2026-06-06", 0, 2)
	req.Tier = model.TierSilver

	got, err := svc.FindBestMatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Unit.ID != "b-silver" {
		t.Fatalf("expected b-silver, got %+v", got)
	}
}

func TestFindBestMatch_TierFilterAppliedInMemory(t *testing.T) {
	// Store ignores the tier filter; the service must still drop other tiers.
	var seen model.UnitFilter
	units := &mockUnitReader{
		listActiveUnitsFunc: func(_ context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error) {
			seen = filter
			return []*model.InventoryUnit{tieredUnit("a-gold", model.TierGold)}, nil
		},
	}
	svc := newTestService(units, &mockReservationReader{})

	req := request("2026-06-06", 0, 2)
	req.Tier = "silver"

	got, err := svc.FindBestMatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no match, got %s (%s)", got.Unit.ID, got.Unit.Tier)
	}
	if seen.Tier != model.TierSilver || seen.MinOccupancy != 2 {
		t.Errorf("store filter = %+v", seen)
	}
}

func TestFindBestMatch_UnknownTierRejected(t *testing.T) {
	svc := newTestService(staticUnits(tieredUnit("a", model.TierGold)), &mockReservationReader{})

	req := request("2026-06-06", 0, 2)
	req.Tier = "Bronze"

	_, err := svc.FindBestMatch(context.Background(), req)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestFindAlternatives_NeverOffersAnotherTier(t *testing.T) {
	units := staticUnits(
		tieredUnit("a", model.TierGold),
		tieredUnit("b", model.TierSilver),
		tieredUnit("c", model.TierGold),
		tieredUnit("d", model.TierPlatinum),
	)
	svc := newTestService(units, &mockReservationReader{})

	req := request("2026-06-06", 0, 2)
	req.Tier = model.TierGold

	got, err := svc.FindAlternatives(context.Background(), "a", req, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Unit.ID != "c" {
		t.Errorf("expected only c, got %+v", got)
	}
}

// ────────────────────────────────────────────────
// Request handling
// ────────────────────────────────────────────────

func TestFindBestMatch_LeavesCallerRequestUntouched(t *testing.T) {
	svc := newTestService(staticUnits(unit("a", "Tulum", "Mexico", "beach", 6)), &mockReservationReader{})

	req := request("2026-06-06", 0, 2)
	req.Destination = "  TULUM "
	req.Category = " Beach"
	req.Tier = "gold"
	before := *req

	if _, err := svc.FindBestMatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *req != before {
		t.Errorf("request mutated: before %+v, after %+v", before, *req)
	}

	if _, err := svc.FindAlternatives(context.Background(), "", req, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *req != before {
		t.Errorf("request mutated by alternatives: before %+v, after %+v", before, *req)
	}
}
