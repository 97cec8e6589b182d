package service

import (
	"context"
	"fmt"
	"time"

	snapshoterrors "weekchain/internal/snapshots/errors"
	"weekchain/internal/snapshots/repository"
	"weekchain/pkg/config"
	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/kafka"
	"weekchain/pkg/model"

	"github.com/google/uuid"
)

type SnapshotService interface {
	// HandleMessage is the consumer handler for capacity.status events.
	HandleMessage(ctx context.Context, msg kafka.Message) error
	Record(ctx context.Context, id string, event *model.CapacityEvent) (*model.CapacitySnapshot, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.CapacitySnapshot, int64, error)
}

type snapshotService struct {
	repo repository.SnapshotRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewSnapshotService(repo repository.SnapshotRepository, cfg *config.Config) SnapshotService {
	return &snapshotService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *snapshotService) HandleMessage(ctx context.Context, msg kafka.Message) error {
	if eventType := msg.GetEventType(); eventType != model.EventCapacityStatus {
		s.cfg.Log.Debug("Skipping unrelated event", "event_type", eventType, "event_id", msg.GetEventID())
		return nil
	}

	var event model.CapacityEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if !event.Tier.Valid() || event.Status.Status == "" {
		return kafka.NewPermanentError("invalid capacity event", snapshoterrors.ErrEventMalformed).
			WithDetail("event_id", msg.GetEventID())
	}

	if _, err := s.Record(ctx, msg.GetEventID(), &event); err != nil {
		return kafka.NewTransientError("store snapshot", err)
	}
	return nil
}

// Record stores the event under id, so a redelivered event maps onto the same snapshot.
func (s *snapshotService) Record(ctx context.Context, id string, event *model.CapacityEvent) (*model.CapacitySnapshot, error) {
	if id == "" {
		id = uuid.New().String()
	}

	snapshot := &model.CapacitySnapshot{
		ID:                 id,
		Trigger:            event.Trigger,
		Tier:               event.Tier,
		Actor:              event.Actor,
		Status:             event.Status.Status,
		UtilizationPercent: event.Status.UtilizationPercent,
		WaitlistEnabled:    event.Status.WaitlistEnabled,
		Tiers:              event.Status.Tiers,
		RecordedAt:         s.now().UTC().Truncate(time.Millisecond),
	}
	if snapshot.Tiers == nil {
		snapshot.Tiers = []model.CapacityTier{}
	}

	if err := s.repo.Insert(ctx, snapshot); err != nil {
		s.cfg.Log.Error("Failed to store capacity snapshot", "id", id, "tier", event.Tier, "error", err)
		return nil, fmt.Errorf("%w: %w", snapshoterrors.ErrStoreUnavailable, err)
	}

	s.cfg.Log.Info("Capacity snapshot recorded",
		"id", id,
		"trigger", snapshot.Trigger,
		"tier", snapshot.Tier,
		"status", snapshot.Status,
		"utilization_percent", snapshot.UtilizationPercent,
	)
	return snapshot, nil
}

func (s *snapshotService) List(ctx context.Context, limit int, offset int64) ([]*model.CapacitySnapshot, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	snapshots, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list snapshots", "limit", limit, "offset", offset, "error", err)
		return nil, 0, apperrors.Unavailable("Snapshot store", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count snapshots", "error", err)
		return nil, 0, apperrors.Unavailable("Snapshot store", err)
	}
	return snapshots, total, nil
}
