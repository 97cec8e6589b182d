// Package seed loads a JSON inventory fixture and writes it to the configured stores.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"weekchain/internal/matching/validator"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"
	"weekchain/pkg/sanitizer"
)

type File struct {
	Units []*model.InventoryUnit `json:"units"`
	Tiers []*model.TierCount     `json:"tiers"`
}

type UnitWriter interface {
	Upsert(ctx context.Context, unit *model.InventoryUnit) error
}

// UnitWriterFunc adapts a plain upsert function, such as the Postgres store's, to UnitWriter.
type UnitWriterFunc func(ctx context.Context, unit *model.InventoryUnit) error

func (f UnitWriterFunc) Upsert(ctx context.Context, unit *model.InventoryUnit) error {
	return f(ctx, unit)
}

type TierWriter interface {
	Upsert(ctx context.Context, count *model.TierCount) error
}

// Load decodes and checks a fixture. Units go through the same struct rules the matcher enforces.
func Load(r io.Reader, v *validator.MatchValidator) (*File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Units))
	for i, u := range f.Units {
		if u == nil {
			return nil, fmt.Errorf("unit %d is null", i)
		}
		u.ID = sanitizer.NormalizeIdentifier(u.ID)
		if err := v.ValidateUnit(u); err != nil {
			return nil, fmt.Errorf("unit %q: %w", u.ID, err)
		}
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("unit %q listed twice", u.ID)
		}
		seen[u.ID] = struct{}{}
	}

	tiers := make(map[model.Tier]struct{}, len(f.Tiers))
	for i, t := range f.Tiers {
		if t == nil {
			return nil, fmt.Errorf("tier %d is null", i)
		}
		tier, err := model.ParseTier(string(t.Tier))
		if err != nil {
			return nil, err
		}
		t.Tier = tier
		if t.TotalSupply < 0 || t.ActiveSold < 0 || t.SalesCap < 0 {
			return nil, fmt.Errorf("tier %s: counts must not be negative", tier)
		}
		if _, dup := tiers[tier]; dup {
			return nil, fmt.Errorf("tier %s listed twice", tier)
		}
		tiers[tier] = struct{}{}
	}
	return &f, nil
}

// Apply upserts every unit into each writer and every tier row into tiers.
func Apply(ctx context.Context, f *File, units []UnitWriter, tiers TierWriter, log *logger.Logger) error {
	now := time.Now().UTC()
	for _, u := range f.Units {
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		for _, w := range units {
			if err := w.Upsert(ctx, u); err != nil {
				return fmt.Errorf("seed unit %s: %w", u.ID, err)
			}
		}
	}
	for _, t := range f.Tiers {
		t.UpdatedAt = now
		if t.UpdatedBy == "" {
			t.UpdatedBy = "seed"
		}
		if err := tiers.Upsert(ctx, t); err != nil {
			return fmt.Errorf("seed tier %s: %w", t.Tier, err)
		}
	}
	log.Info("Seed applied", "units", len(f.Units), "tiers", len(f.Tiers), "unit_stores", len(units))
	return nil
}
