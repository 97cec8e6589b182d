package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	capacityerrors "weekchain/internal/capacity/errors"
	"weekchain/internal/capacity/policy"
	"weekchain/internal/capacity/repository"
	"weekchain/internal/capacity/validator"
	"weekchain/pkg/config"
	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/kafka"
	"weekchain/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const eventSource = "capacity"

type CapacityService interface {
	GlobalStatus(ctx context.Context) (*model.GlobalCapacityStatus, error)
	CanSell(ctx context.Context, tier model.Tier) (*model.AdmissionDecision, error)
	CommitSale(ctx context.Context, tier model.Tier) (*model.GlobalCapacityStatus, error)
	ReleaseSale(ctx context.Context, tier model.Tier) (*model.GlobalCapacityStatus, error)
	SetSalesEnabled(ctx context.Context, tier model.Tier, toggle *model.SalesToggle) (*model.GlobalCapacityStatus, error)
}

type capacityService struct {
	repo      repository.TierRepository
	validator *validator.ToggleValidator
	publisher kafka.Publisher
	ledger    *policy.Ledger
	gate      *policy.Gate
	cfg       *config.Config
	now       func() time.Time
}

func NewCapacityService(
	repo repository.TierRepository,
	validator *validator.ToggleValidator,
	publisher kafka.Publisher,
	cfg *config.Config,
) CapacityService {
	return &capacityService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		ledger:    policy.NewLedger(ThresholdsFromConfig(cfg)),
		gate:      policy.NewGate(),
		cfg:       cfg,
		now:       time.Now,
	}
}

func ThresholdsFromConfig(cfg *config.Config) policy.Thresholds {
	return policy.Thresholds{
		GreenMax:      cfg.CapacityGreenMax,
		YellowMax:     cfg.CapacityYellowMax,
		SafeFraction:  cfg.CapacitySafeFraction,
		TotalSalesCap: cfg.CapacitySalesCap,
	}
}

// GlobalStatus evaluates the ledger on counts read for this call only.
func (s *capacityService) GlobalStatus(ctx context.Context) (*model.GlobalCapacityStatus, error) {
	status, err := s.evaluate(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to read tier counts", "error", err)
		return nil, s.unavailable(err)
	}
	return status, nil
}

// CanSell fails closed: when the ledger cannot be read the decision is a denial and the error is returned with it.
func (s *capacityService) CanSell(ctx context.Context, tier model.Tier) (*model.AdmissionDecision, error) {
	canonical, err := s.parseTier(tier)
	if err != nil {
		decision := policy.Denied(tier, model.DenyReasonUnknownTier)
		return &decision, err
	}

	status, err := s.evaluate(ctx)
	if err != nil {
		s.cfg.Log.Error("Admission check failed closed", "tier", canonical, "error", err)
		decision := policy.Denied(canonical, model.DenyReasonUnavailable)
		return &decision, s.unavailable(err)
	}

	decision := s.gate.Decide(status, canonical)
	if !decision.Allowed {
		s.cfg.Log.Info("Sale denied",
			"tier", canonical,
			"reason", decision.Reason,
			"global_status", status.Status,
		)
	}
	return &decision, nil
}

// CommitSale re-runs the gate on fresh counts and increments the tier in the same
// transaction. The gate sees the count before the increment, so a sale is allowed
// while the tier is below its ceiling and may land above it: at 9/13 (69.2%) under a
// 70% ceiling the sale goes through and leaves the tier at 10/13 (76.9%).
func (s *capacityService) CommitSale(ctx context.Context, tier model.Tier) (*model.GlobalCapacityStatus, error) {
	canonical, err := s.parseTier(tier)
	if err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		counts, err := s.repo.ListTierCounts(sc)
		if err != nil {
			return err
		}
		status := s.ledger.Evaluate(counts, s.now())
		decision := s.gate.Decide(&status, canonical)
		if !decision.Allowed {
			return apperrors.StopSale(string(canonical), decision.Reason)
		}

		row, ok := findCount(counts, canonical)
		if !ok {
			return apperrors.StopSale(string(canonical), model.DenyReasonTierCeiling)
		}
		return s.repo.CompareAndSetActive(sc, row.Tier, row.ActiveSold, row.ActiveSold+1)
	})
	if err != nil {
		return nil, s.mapWriteError("commit sale", canonical, err)
	}

	s.cfg.Log.Info("Sale committed", "tier", canonical)
	return s.afterWrite(ctx, model.TriggerSaleCommitted, canonical, "")
}

// ReleaseSale decrements the tier's active count. Releasing at zero is a no-op.
func (s *capacityService) ReleaseSale(ctx context.Context, tier model.Tier) (*model.GlobalCapacityStatus, error) {
	canonical, err := s.parseTier(tier)
	if err != nil {
		return nil, err
	}

	released := false
	err = s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		row, err := s.repo.FindByTier(sc, canonical)
		if err != nil {
			return err
		}
		if row.ActiveSold <= 0 {
			return nil
		}
		released = true
		return s.repo.CompareAndSetActive(sc, row.Tier, row.ActiveSold, row.ActiveSold-1)
	})
	if err != nil {
		return nil, s.mapWriteError("release sale", canonical, err)
	}

	if !released {
		s.cfg.Log.Warn("Release requested on a tier with no active sales", "tier", canonical)
		return s.GlobalStatus(ctx)
	}
	s.cfg.Log.Info("Sale released", "tier", canonical)
	return s.afterWrite(ctx, model.TriggerSaleReleased, canonical, "")
}

// SetSalesEnabled is the administrator override. Enabling never lifts the ceiling or a RED block.
func (s *capacityService) SetSalesEnabled(ctx context.Context, tier model.Tier, toggle *model.SalesToggle) (*model.GlobalCapacityStatus, error) {
	canonical, err := s.parseTier(tier)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(toggle); err != nil {
		s.cfg.Log.Warn("Sales toggle validation failed", "tier", canonical, "error", err)
		return nil, apperrors.Validation("Sales toggle validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.SetSalesEnabled(ctx, canonical, *toggle.Enabled, toggle.Actor); err != nil {
		return nil, s.mapWriteError("toggle sales", canonical, err)
	}

	s.cfg.Log.Info("Tier sales toggled",
		"tier", canonical,
		"enabled", *toggle.Enabled,
		"actor", toggle.Actor,
	)
	return s.afterWrite(ctx, model.TriggerSalesToggled, canonical, toggle.Actor)
}

// --- Helpers ---

func (s *capacityService) evaluate(ctx context.Context) (*model.GlobalCapacityStatus, error) {
	counts, err := s.repo.ListTierCounts(ctx)
	if err != nil {
		return nil, err
	}
	status := s.ledger.Evaluate(counts, s.now())
	return &status, nil
}

func (s *capacityService) parseTier(tier model.Tier) (model.Tier, error) {
	canonical, err := model.ParseTier(string(tier))
	if err != nil {
		return tier, apperrors.InvalidInput(fmt.Sprintf("%s: %q", capacityerrors.ErrUnknownTier, tier))
	}
	return canonical, nil
}

func (s *capacityService) unavailable(err error) error {
	return apperrors.Unavailable("Capacity store", fmt.Errorf("%w: %w", capacityerrors.ErrStoreUnavailable, err))
}

func (s *capacityService) mapWriteError(operation string, tier model.Tier, err error) error {
	switch {
	case apperrors.IsAppError(err):
		s.cfg.Log.Info("Capacity write rejected", "operation", operation, "tier", tier, "error", err)
		return err
	case errors.Is(err, capacityerrors.ErrConcurrentUpdate):
		s.cfg.Log.Warn("Capacity write lost a race", "operation", operation, "tier", tier)
		return apperrors.Conflict(fmt.Sprintf("tier %s changed concurrently, retry the request", tier))
	case errors.Is(err, capacityerrors.ErrTierNotFound):
		return apperrors.NotFoundWithID("Tier", string(tier))
	default:
		s.cfg.Log.Error("Capacity write failed", "operation", operation, "tier", tier, "error", err)
		return s.unavailable(err)
	}
}

// afterWrite reads the new status and publishes it. A publish failure is logged, not returned:
// the ledger write has already committed.
func (s *capacityService) afterWrite(ctx context.Context, trigger string, tier model.Tier, actor string) (*model.GlobalCapacityStatus, error) {
	status, err := s.GlobalStatus(ctx)
	if err != nil {
		return nil, err
	}

	event := model.CapacityEvent{
		Trigger: trigger,
		Tier:    tier,
		Actor:   actor,
		Status:  *status,
	}
	if err := kafka.PublishEvent(ctx, s.publisher, string(tier), model.EventCapacityStatus, eventSource, event); err != nil {
		s.cfg.Log.Error("Failed to publish capacity event",
			"trigger", trigger,
			"tier", tier,
			"topic", s.cfg.CapacityTopic,
			"error", err,
		)
	}
	return status, nil
}

// findCount returns the row stored for tier, matching the key case-insensitively.
// The returned row keeps the stored key so writes address the same document.
func findCount(counts []model.TierCount, tier model.Tier) (model.TierCount, bool) {
	for _, c := range counts {
		if t, err := model.ParseTier(string(c.Tier)); err == nil && t == tier {
			return c, true
		}
	}
	return model.TierCount{}, false
}
