package model

import (
	"time"
	"weekchain/pkg/calendar"
)

const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// DateRange is a half-open interval [Start, End) of calendar dates.
type DateRange struct {
	Start calendar.Date `json:"start" bson:"check_in"`
	End   calendar.Date `json:"end" bson:"check_out"`
}

func NewDateRange(start, end calendar.Date) DateRange {
	return DateRange{Start: start, End: end}
}

func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.Start.Before(r.End)
}

func (r DateRange) Nights() int {
	return r.Start.DaysUntil(r.End)
}

func (r DateRange) Shift(days int) DateRange {
	return DateRange{Start: r.Start.AddDays(days), End: r.End.AddDays(days)}
}

// Overlaps uses half-open semantics: a range ending on the day another starts does not overlap it.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + ")"
}

type Reservation struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty"`
	UnitID      string        `json:"unit_id" bson:"unit_id"`
	CheckIn     calendar.Date `json:"check_in" bson:"check_in"`
	CheckOut    calendar.Date `json:"check_out" bson:"check_out"`
	PartySize   int           `json:"party_size" bson:"party_size"`
	HolderID    string        `json:"holder_id" bson:"holder_id"`
	Status      string        `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

func (r *Reservation) Range() DateRange {
	return DateRange{Start: r.CheckIn, End: r.CheckOut}
}

// ReservationCommit is the request to turn a match into a confirmed reservation.
type ReservationCommit struct {
	UnitID    string        `json:"unit_id" validate:"required"`
	CheckIn   calendar.Date `json:"check_in" validate:"required_date"`
	CheckOut  calendar.Date `json:"check_out" validate:"required_date"`
	PartySize int           `json:"party_size" validate:"required,min=1,max=64"`
	HolderID  string        `json:"holder_id" validate:"required,min=1,max=128"`
}

func (c *ReservationCommit) Range() DateRange {
	return DateRange{Start: c.CheckIn, End: c.CheckOut}
}
