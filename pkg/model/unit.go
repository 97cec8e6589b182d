package model

import "time"

const (
	UnitStatusActive   = "active"
	UnitStatusInactive = "inactive"

	// CategoryAny expresses no category preference.
	CategoryAny = "any"
)

// InventoryUnit is a sellable property-week. The matcher never mutates units.
type InventoryUnit struct {
	ID           string    `json:"id" bson:"_id" validate:"required"`
	AssetID      string    `json:"asset_id" bson:"asset_id" validate:"required"`
	Country      string    `json:"country" bson:"country" validate:"required"`
	City         string    `json:"city" bson:"city" validate:"required"`
	Category     string    `json:"category" bson:"category" validate:"required,category"`
	Tier         Tier      `json:"tier" bson:"tier" validate:"required,tier"`
	MaxOccupancy int       `json:"max_occupancy" bson:"max_occupancy" validate:"required,min=1,max=64"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=active inactive"`
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

func (u *InventoryUnit) IsActive() bool {
	return u != nil && u.Status == UnitStatusActive
}

// UnitFilter is the hard filter applied by the store: only active units with at least
// MinOccupancy beds are returned.
type UnitFilter struct {
	MinOccupancy int
	Tier         Tier
}
