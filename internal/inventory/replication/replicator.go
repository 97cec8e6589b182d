// Package replication mirrors reservation events into the Postgres read store used by the matcher.
package replication

import (
	"context"
	"errors"
	"fmt"

	inventoryerrors "weekchain/internal/inventory/errors"
	"weekchain/pkg/calendar"
	"weekchain/pkg/kafka"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"
)

type ReservationSink interface {
	UpsertReservation(ctx context.Context, r *model.Reservation) error
}

type Replicator struct {
	sink ReservationSink
	log  *logger.Logger
}

func NewReplicator(sink ReservationSink, log *logger.Logger) *Replicator {
	return &Replicator{sink: sink, log: log.Component("replicator")}
}

// HandleMessage is the consumer entry point for the reservation topic.
func (r *Replicator) HandleMessage(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	if eventType != model.EventReservationConfirmed && eventType != model.EventReservationCancelled {
		r.log.Debug("Skipping event", "event_type", eventType)
		return nil
	}

	var event model.ReservationEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}

	reservation, err := toReservation(&event)
	if err != nil {
		return kafka.NewPermanentError("malformed reservation event", err).
			WithDetail("event_id", msg.GetEventID())
	}

	if err := r.sink.UpsertReservation(ctx, reservation); err != nil {
		if errors.Is(err, inventoryerrors.ErrUnitNotFound) {
			return kafka.NewPermanentError("reservation references a unit missing from the replica", err).
				WithDetail("unit_id", reservation.UnitID)
		}
		return kafka.NewTransientError("replica write failed", err).
			WithDetail("reservation_id", reservation.ID)
	}

	r.log.Debug("Reservation replicated",
		"reservation_id", reservation.ID,
		"unit_id", reservation.UnitID,
		"status", reservation.Status,
	)
	return nil
}

func toReservation(e *model.ReservationEvent) (*model.Reservation, error) {
	if e.ReservationID == "" || e.UnitID == "" {
		return nil, errors.New("reservation_id and unit_id are required")
	}
	if e.Status != model.ReservationConfirmed && e.Status != model.ReservationCancelled {
		return nil, fmt.Errorf("unknown status %q", e.Status)
	}
	checkIn, err := calendar.Parse(e.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("check_in: %w", err)
	}
	checkOut, err := calendar.Parse(e.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("check_out: %w", err)
	}
	if !checkIn.Before(checkOut) {
		return nil, errors.New("check_in must precede check_out")
	}

	r := &model.Reservation{
		ID:        e.ReservationID,
		UnitID:    e.UnitID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		PartySize: e.PartySize,
		HolderID:  e.HolderID,
		Status:    e.Status,
		CreatedAt: e.OccurredAt,
	}
	if r.PartySize < 1 {
		r.PartySize = 1
	}
	if r.Status == model.ReservationCancelled {
		at := e.OccurredAt
		r.CancelledAt = &at
	}
	return r, nil
}
