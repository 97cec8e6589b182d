package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	matchingerrors "weekchain/internal/matching/errors"
	"weekchain/internal/matching/policy"
	"weekchain/internal/matching/validator"
	"weekchain/pkg/config"
	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/model"
	"weekchain/pkg/sanitizer"

	"golang.org/x/sync/errgroup"
)

// UnitReader lists units passing the hard filter: active with max_occupancy >= MinOccupancy.
type UnitReader interface {
	ListActiveUnits(ctx context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error)
}

// ReservationReader lists the confirmed stays of a unit as half-open ranges.
type ReservationReader interface {
	ListConfirmedReservations(ctx context.Context, unitID string) ([]model.DateRange, error)
}

type MatchService interface {
	FindBestMatch(ctx context.Context, req *model.MatchRequest) (*model.PropertyMatch, error)
	FindAlternatives(ctx context.Context, excludeUnitID string, req *model.MatchRequest, limit int) ([]model.PropertyMatch, error)
}

type matchService struct {
	units        UnitReader
	reservations ReservationReader
	validator    *validator.MatchValidator
	scorer       *policy.Scorer
	cfg          *config.Config
}

func NewMatchService(
	units UnitReader,
	reservations ReservationReader,
	validator *validator.MatchValidator,
	cfg *config.Config,
) MatchService {
	return &matchService{
		units:        units,
		reservations: reservations,
		validator:    validator,
		scorer:       policy.NewScorer(WeightsFromConfig(cfg)),
		cfg:          cfg,
	}
}

func WeightsFromConfig(cfg *config.Config) policy.Weights {
	return policy.Weights{
		Exact:          cfg.MatchExactScore,
		FlexBase:       cfg.MatchFlexBaseScore,
		Alternative:    cfg.MatchAlternativeScore,
		CityBonus:      cfg.MatchCityBonus,
		CountryBonus:   cfg.MatchCountryBonus,
		CategoryBonus:  cfg.MatchCategoryBonus,
		OccupancyBonus: cfg.MatchOccupancyBonus,
		OccupancySlack: cfg.MatchOccupancySlack,
	}
}

func (s *matchService) FindBestMatch(ctx context.Context, req *model.MatchRequest) (*model.PropertyMatch, error) {
	req = s.sanitize(req)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	units, err := s.listCandidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		s.cfg.Log.Info("No unit satisfies the hard filter", "party_size", req.PartySize, "tier", req.Tier)
		return nil, nil
	}

	units = policy.SoftFilter(units, req)

	booked, err := s.loadReservations(ctx, units)
	if err != nil {
		return nil, err
	}

	candidates := policy.CandidateRanges(req.Range(), req.FlexDays, s.cfg.MatchFlexStepDays)
	shifted := candidates[1:]

	matches := make([]model.PropertyMatch, 0, len(units))
	for i, unit := range units {
		if policy.IsAvailable(candidates[0].Range, booked[i]) {
			matches = append(matches, s.newMatch(unit, candidates[0], s.scorer.ScoreExact(unit, req)))
			continue
		}
		if c, ok := policy.FirstAvailable(shifted, booked[i]); ok {
			matches = append(matches, s.newMatch(unit, c, s.scorer.ScoreFlexible(c.OffsetDays)))
		}
	}

	if len(matches) == 0 {
		s.cfg.Log.Info("No available unit for requested dates",
			"range", req.Range().String(),
			"flexibility_days", req.FlexDays,
			"candidates", len(units),
		)
		return nil, nil
	}

	policy.Rank(matches)
	best := matches[0]

	s.cfg.Log.Info("Best match found",
		"unit_id", best.Unit.ID,
		"score", best.Score,
		"offset_days", best.OffsetDays,
		"candidates", len(units),
		"matches", len(matches),
	)
	return &best, nil
}

func (s *matchService) FindAlternatives(ctx context.Context, excludeUnitID string, req *model.MatchRequest, limit int) ([]model.PropertyMatch, error) {
	req = s.sanitize(req)
	excludeUnitID = sanitizer.NormalizeIdentifier(excludeUnitID)
	if err := s.validate(req); err != nil {
		return nil, err
	}
	limit = s.normalizeLimit(limit)

	units, err := s.listCandidates(ctx, req)
	if err != nil {
		return nil, err
	}

	eligible := make([]*model.InventoryUnit, 0, len(units))
	for _, u := range units {
		if u.ID != excludeUnitID {
			eligible = append(eligible, u)
		}
	}

	booked, err := s.loadReservations(ctx, eligible)
	if err != nil {
		return nil, err
	}

	exact := policy.Candidate{Range: req.Range()}
	alternatives := make([]model.PropertyMatch, 0, limit)
	for i, unit := range eligible {
		if len(alternatives) == limit {
			break
		}
		if policy.IsAvailable(exact.Range, booked[i]) {
			alternatives = append(alternatives, s.newMatch(unit, exact, s.scorer.ScoreAlternative()))
		}
	}

	s.cfg.Log.Info("Alternatives computed",
		"exclude_unit_id", excludeUnitID,
		"limit", limit,
		"count", len(alternatives),
	)
	return alternatives, nil
}

// --- Helpers ---

// sanitize returns a normalised copy; the caller's request is left untouched.
func (s *matchService) sanitize(req *model.MatchRequest) *model.MatchRequest {
	clean := *req
	clean.Destination = sanitizer.NormalizeDestination(clean.Destination)
	clean.Category = sanitizer.NormalizeCategory(clean.Category)
	if tier, err := model.ParseTier(string(clean.Tier)); err == nil {
		clean.Tier = tier
	}
	return &clean
}

func (s *matchService) validate(req *model.MatchRequest) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Match request validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) == 1 && verrs[0].Field == "EndDate" {
			return apperrors.InvalidInput(matchingerrors.ErrInvalidDateRange.Error())
		}
		return apperrors.Validation("Match request validation failed", map[string]any{"error": err.Error()})
	}
	if req.FlexDays > s.cfg.MatchMaxFlexDays {
		return apperrors.InvalidInput(fmt.Sprintf("%s (%d > %d)",
			matchingerrors.ErrFlexibilityTooWide, req.FlexDays, s.cfg.MatchMaxFlexDays))
	}
	return nil
}

func (s *matchService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.MatchAlternativesLimit
	}
	return min(limit, s.cfg.MatchMaxAlternatives)
}

// listCandidates applies the hard filter and orders units by id so ranking ties are
// deterministic regardless of store ordering. A tier on the request is a hard
// constraint: a unit of another tier is never a candidate.
func (s *matchService) listCandidates(ctx context.Context, req *model.MatchRequest) ([]*model.InventoryUnit, error) {
	filter := model.UnitFilter{MinOccupancy: req.PartySize, Tier: req.Tier}
	units, err := s.units.ListActiveUnits(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list active units", "party_size", req.PartySize, "tier", req.Tier, "error", err)
		return nil, apperrors.Unavailable("Inventory store", fmt.Errorf("%w: %w", matchingerrors.ErrInventoryUnavailable, err))
	}

	filtered := make([]*model.InventoryUnit, 0, len(units))
	for _, u := range units {
		if !u.IsActive() || u.MaxOccupancy < req.PartySize {
			continue
		}
		if req.Tier != "" {
			if tier, err := model.ParseTier(string(u.Tier)); err != nil || tier != req.Tier {
				continue
			}
		}
		filtered = append(filtered, u)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return filtered, nil
}

// loadReservations reads every unit's confirmed stays with bounded concurrency. The
// result is indexed like units and complete before any scoring happens.
func (s *matchService) loadReservations(ctx context.Context, units []*model.InventoryUnit) ([][]model.DateRange, error) {
	booked := make([][]model.DateRange, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MatchFetchConcurrency)

	for i, unit := range units {
		g.Go(func() error {
			ranges, err := s.reservations.ListConfirmedReservations(gctx, unit.ID)
			if err != nil {
				return fmt.Errorf("unit %s: %w", unit.ID, err)
			}
			booked[i] = ranges
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to load reservations", "units", len(units), "error", err)
		return nil, apperrors.Unavailable("Inventory store", fmt.Errorf("%w: %w", matchingerrors.ErrInventoryUnavailable, err))
	}
	return booked, nil
}

func (s *matchService) newMatch(unit *model.InventoryUnit, c policy.Candidate, score int) model.PropertyMatch {
	return model.PropertyMatch{
		Unit:       unit,
		Score:      score,
		Start:      c.Range.Start,
		End:        c.Range.End,
		OffsetDays: c.OffsetDays,
	}
}
