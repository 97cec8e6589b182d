package model

import "time"

const (
	EventCapacityStatus       = "capacity.status"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

const (
	TriggerSaleCommitted = "sale_committed"
	TriggerSaleReleased  = "sale_released"
	TriggerSalesToggled  = "sales_toggled"
)

// CapacityEvent is published whenever the ledger changes.
type CapacityEvent struct {
	Trigger string               `json:"trigger"`
	Tier    Tier                 `json:"tier"`
	Actor   string               `json:"actor,omitempty"`
	Status  GlobalCapacityStatus `json:"status"`
}

type ReservationEvent struct {
	ReservationID string    `json:"reservation_id"`
	UnitID        string    `json:"unit_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	PartySize     int       `json:"party_size"`
	HolderID      string    `json:"holder_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// CapacitySnapshot is a historical record of a capacity event, kept for monitoring.
type CapacitySnapshot struct {
	ID                 string         `json:"id" bson:"_id"`
	Trigger            string         `json:"trigger" bson:"trigger"`
	Tier               Tier           `json:"tier" bson:"tier"`
	Actor              string         `json:"actor,omitempty" bson:"actor,omitempty"`
	Status             StatusLevel    `json:"status" bson:"status"`
	UtilizationPercent float64        `json:"utilization_percent" bson:"utilization_percent"`
	WaitlistEnabled    bool           `json:"waitlist_enabled" bson:"waitlist_enabled"`
	Tiers              []CapacityTier `json:"tiers" bson:"tiers"`
	RecordedAt         time.Time      `json:"recorded_at" bson:"recorded_at"`
}
