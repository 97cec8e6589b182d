package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryerrors "weekchain/internal/inventory/errors"
	"weekchain/internal/inventory/repository"
	"weekchain/internal/matching/policy"
	reservationerrors "weekchain/internal/reservations/errors"
	"weekchain/internal/reservations/validator"
	"weekchain/pkg/config"
	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/kafka"
	"weekchain/pkg/model"
	"weekchain/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const eventSource = "reservations"

type ReservationService interface {
	Commit(ctx context.Context, commit *model.ReservationCommit) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) error
	ListByUnit(ctx context.Context, unitID string) ([]*model.Reservation, error)
}

type reservationService struct {
	units        repository.UnitRepository
	reservations repository.ReservationRepository
	locks        repository.LockRepository
	validator    *validator.ReservationValidator
	publisher    kafka.Publisher
	cfg          *config.Config
	now          func() time.Time
}

func NewReservationService(
	units repository.UnitRepository,
	reservations repository.ReservationRepository,
	locks repository.LockRepository,
	validator *validator.ReservationValidator,
	publisher kafka.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		units:        units,
		reservations: reservations,
		locks:        locks,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Commit turns a match into a confirmed reservation. Availability is re-checked under the unit lock
// inside a transaction; losing the race yields MATCH_UNAVAILABLE.
func (s *reservationService) Commit(ctx context.Context, commit *model.ReservationCommit) (*model.Reservation, error) {
	s.sanitize(commit)
	if err := s.validate(commit); err != nil {
		return nil, err
	}

	unit, err := s.units.FindByID(ctx, commit.UnitID)
	if err != nil {
		if errors.Is(err, inventoryerrors.ErrUnitNotFound) {
			return nil, apperrors.NotFoundWithID("Unit", commit.UnitID)
		}
		s.cfg.Log.Error("Failed to load unit", "unit_id", commit.UnitID, "error", err)
		return nil, s.unavailable(err)
	}
	if !unit.IsActive() {
		s.cfg.Log.Info("Commit rejected, unit inactive", "unit_id", unit.ID)
		return nil, apperrors.MatchUnavailable(unit.ID)
	}
	if commit.PartySize > unit.MaxOccupancy {
		return nil, apperrors.Validation(reservationerrors.ErrPartyTooLarge.Error(), map[string]any{
			"party_size":    commit.PartySize,
			"max_occupancy": unit.MaxOccupancy,
		})
	}

	lock, err := s.acquireUnitLock(ctx, unit.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.locks.Delete(ctx, lock.ID, lock.Owner); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	reservation := &model.Reservation{
		ID:        uuid.New().String(),
		UnitID:    unit.ID,
		CheckIn:   commit.CheckIn,
		CheckOut:  commit.CheckOut,
		PartySize: commit.PartySize,
		HolderID:  commit.HolderID,
		Status:    model.ReservationConfirmed,
	}

	err = s.reservations.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booked, err := s.reservations.ListConfirmedReservations(sessCtx, unit.ID)
		if err != nil {
			return err
		}
		if !policy.IsAvailable(reservation.Range(), booked) {
			return apperrors.MatchUnavailable(unit.ID)
		}
		return s.reservations.Create(sessCtx, reservation)
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeMatchUnavailable) {
			s.cfg.Log.Info("Commit lost to an overlapping reservation",
				"unit_id", unit.ID,
				"range", reservation.Range().String(),
			)
			return nil, err
		}
		s.cfg.Log.Error("Failed to commit reservation", "unit_id", unit.ID, "error", err)
		return nil, s.unavailable(err)
	}

	s.cfg.Log.Info("Reservation confirmed",
		"id", reservation.ID,
		"unit_id", reservation.UnitID,
		"range", reservation.Range().String(),
		"party_size", reservation.PartySize,
	)
	s.publish(ctx, model.EventReservationConfirmed, reservation)
	return reservation, nil
}

// Cancel is idempotent: cancelling an already cancelled reservation succeeds without a new event.
func (s *reservationService) Cancel(ctx context.Context, id string) error {
	id = sanitizer.NormalizeIdentifier(id)
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, inventoryerrors.ErrReservationNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		return s.unavailable(err)
	}
	if reservation.Status == model.ReservationCancelled {
		return nil
	}

	at := s.now().UTC()
	if err := s.reservations.Cancel(ctx, id, at); err != nil {
		if errors.Is(err, inventoryerrors.ErrReservationNotFound) {
			return nil
		}
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return s.unavailable(err)
	}

	reservation.Status = model.ReservationCancelled
	reservation.CancelledAt = &at
	s.cfg.Log.Info("Reservation cancelled", "id", id, "unit_id", reservation.UnitID)
	s.publish(ctx, model.EventReservationCancelled, reservation)
	return nil
}

func (s *reservationService) ListByUnit(ctx context.Context, unitID string) ([]*model.Reservation, error) {
	unitID = sanitizer.NormalizeIdentifier(unitID)
	if unitID == "" {
		return nil, apperrors.InvalidInput("Unit ID cannot be empty")
	}

	reservations, err := s.reservations.ListByUnit(ctx, unitID)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations", "unit_id", unitID, "error", err)
		return nil, s.unavailable(err)
	}
	return reservations, nil
}

// --- Helpers ---

func (s *reservationService) sanitize(commit *model.ReservationCommit) {
	commit.UnitID = sanitizer.NormalizeIdentifier(commit.UnitID)
	commit.HolderID = sanitizer.TrimAndNormalize(commit.HolderID)
}

func (s *reservationService) validate(commit *model.ReservationCommit) error {
	if err := s.validator.Validate(commit); err != nil {
		s.cfg.Log.Warn("Reservation commit validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs.IsRangeOnly() {
			return apperrors.InvalidInput(reservationerrors.ErrInvalidDateRange.Error())
		}
		return apperrors.Validation("Reservation commit validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func lockID(unitID string) string {
	return "reservation_lock_" + unitID
}

// acquireUnitLock inserts the unit's lock document. A held lock past its TTL is reaped once before giving up.
func (s *reservationService) acquireUnitLock(ctx context.Context, unitID string) (*model.ReservationLock, error) {
	lock := &model.ReservationLock{
		ID:        lockID(unitID),
		Owner:     uuid.New().String(),
		ExpiresAt: s.now().UTC().Add(s.cfg.ReservationLockTTL),
	}

	for attempt := 0; attempt < 2; attempt++ {
		_, err := s.locks.Create(ctx, lock)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, inventoryerrors.ErrDuplicate) {
			return nil, apperrors.Internal("Failed to acquire reservation lock", err)
		}
		if attempt > 0 {
			break
		}
		reaped, reapErr := s.locks.DeleteExpired(ctx, lock.ID, s.now().UTC())
		if reapErr != nil || !reaped {
			break
		}
		s.cfg.Log.Warn("Reaped expired reservation lock", "lock_id", lock.ID)
	}

	return nil, apperrors.Conflict(fmt.Sprintf("%s, retry shortly", reservationerrors.ErrLockHeld)).
		WithDetails(map[string]any{"unit_id": unitID, "retryable": true})
}

func (s *reservationService) unavailable(err error) error {
	return apperrors.Unavailable("Reservation store", fmt.Errorf("%w: %w", reservationerrors.ErrStoreUnavailable, err))
}

func (s *reservationService) publish(ctx context.Context, eventType string, r *model.Reservation) {
	event := model.ReservationEvent{
		ReservationID: r.ID,
		UnitID:        r.UnitID,
		CheckIn:       r.CheckIn.String(),
		CheckOut:      r.CheckOut.String(),
		PartySize:     r.PartySize,
		HolderID:      r.HolderID,
		Status:        r.Status,
		OccurredAt:    s.now().UTC(),
	}
	if err := kafka.PublishEvent(ctx, s.publisher, r.UnitID, eventType, eventSource, event); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", r.ID,
			"topic", s.cfg.ReservationTopic,
			"error", err,
		)
	}
}
