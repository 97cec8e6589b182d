package model

import "weekchain/pkg/calendar"

// MatchRequest describes what a buyer wants. Destination is matched as a
// case-insensitive substring of the unit's city or country.
type MatchRequest struct {
	Start       calendar.Date `json:"start_date" validate:"required_date"`
	End         calendar.Date `json:"end_date" validate:"required_date"`
	FlexDays    int           `json:"flexibility_days" validate:"min=0"`
	PartySize   int           `json:"party_size" validate:"required,min=1,max=64"`
	Destination string        `json:"destination,omitempty" validate:"omitempty,max=100"`
	Category    string        `json:"category,omitempty" validate:"omitempty,category"`
	Tier        Tier          `json:"tier,omitempty" validate:"omitempty,tier"`
}

func (r *MatchRequest) Range() DateRange {
	return DateRange{Start: r.Start, End: r.End}
}

type AlternativesRequest struct {
	MatchRequest
	ExcludeUnitID string `json:"exclude_unit_id"`
	Limit         int    `json:"limit" validate:"min=0"`
}

type PropertyMatch struct {
	Unit       *InventoryUnit `json:"unit"`
	Score      int            `json:"score"`
	Start      calendar.Date  `json:"start_date"`
	End        calendar.Date  `json:"end_date"`
	OffsetDays int            `json:"offset_days"`
}

func (m *PropertyMatch) IsExact() bool {
	return m.OffsetDays == 0
}

type MatchResponse struct {
	Matched bool           `json:"matched"`
	Match   *PropertyMatch `json:"match,omitempty"`
}

type AlternativesResponse struct {
	Alternatives []PropertyMatch `json:"alternatives"`
	Count        int             `json:"count"`
}
