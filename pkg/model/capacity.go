package model

import (
	"fmt"
	"strings"
	"time"
)

type Tier string

const (
	TierSilver    Tier = "Silver"
	TierGold      Tier = "Gold"
	TierPlatinum  Tier = "Platinum"
	TierSignature Tier = "Signature"
)

var AllTiers = []Tier{TierSilver, TierGold, TierPlatinum, TierSignature}

func ParseTier(s string) (Tier, error) {
	for _, t := range AllTiers {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

func (t Tier) Valid() bool {
	_, err := ParseTier(string(t))
	return err == nil
}

type StatusLevel string

const (
	StatusGreen  StatusLevel = "GREEN"
	StatusYellow StatusLevel = "YELLOW"
	StatusRed    StatusLevel = "RED"
)

// TierCount is the raw ledger row for a tier as read from the store. SalesCap bounds
// the tier's lifetime sales on top of the utilization ceiling; zero means uncapped.
type TierCount struct {
	Tier         Tier      `json:"tier" bson:"_id"`
	TotalSupply  int       `json:"total_supply" bson:"total_supply"`
	ActiveSold   int       `json:"active_sold" bson:"active_sold"`
	SalesCap     int       `json:"sales_cap,omitempty" bson:"sales_cap,omitempty"`
	SalesEnabled bool      `json:"sales_enabled" bson:"sales_enabled"`
	UpdatedBy    string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// CapacityTier is a tier evaluated against the safe-capacity ceiling.
type CapacityTier struct {
	Tier               Tier    `json:"tier" bson:"tier"`
	TotalSupply        int     `json:"total_supply" bson:"total_supply"`
	ActiveSold         int     `json:"active_sold" bson:"active_sold"`
	SafeFraction       float64 `json:"safe_fraction" bson:"safe_fraction"`
	Utilization        float64 `json:"utilization" bson:"utilization"`
	UtilizationPercent float64 `json:"utilization_percent" bson:"utilization_percent"`
	StopSale           bool    `json:"stop_sale" bson:"stop_sale"`
	SalesEnabled       bool    `json:"sales_enabled" bson:"sales_enabled"`
	SalesCap           int     `json:"sales_cap,omitempty" bson:"sales_cap,omitempty"`
	SalesCapReached    bool    `json:"sales_cap_reached" bson:"sales_cap_reached"`
}

type GlobalCapacityStatus struct {
	Status             StatusLevel    `json:"status"`
	Utilization        float64        `json:"utilization"`
	UtilizationPercent float64        `json:"utilization_percent"`
	TotalSupply        int            `json:"total_supply"`
	ActiveSold         int            `json:"active_sold"`
	Tiers              []CapacityTier `json:"tiers"`
	SalesCap           int            `json:"sales_cap,omitempty"`
	SalesCapReached    bool           `json:"sales_cap_reached"`
	WaitlistEnabled    bool           `json:"waitlist_enabled"`
	EvaluatedAt        time.Time      `json:"evaluated_at"`
}

func (s *GlobalCapacityStatus) TierStatus(tier Tier) (CapacityTier, bool) {
	for _, t := range s.Tiers {
		if t.Tier == tier {
			return t, true
		}
	}
	return CapacityTier{}, false
}

const (
	DenyReasonNone        = ""
	DenyReasonTierCeiling = "tier_ceiling"
	DenyReasonGlobalRed   = "global_red"
	DenyReasonTierCap     = "tier_sales_cap"
	DenyReasonTotalCap    = "total_sales_cap"
	DenyReasonDisabled    = "sales_disabled"
	DenyReasonUnknownTier = "unknown_tier"
	DenyReasonUnavailable = "store_unavailable"
)

type AdmissionDecision struct {
	Tier    Tier        `json:"tier"`
	Allowed bool        `json:"allowed"`
	Reason  string      `json:"reason,omitempty"`
	Global  StatusLevel `json:"global_status,omitempty"`
}

type SalesToggle struct {
	Enabled *bool  `json:"enabled" validate:"required"`
	Actor   string `json:"actor" validate:"required,min=1,max=128"`
}
