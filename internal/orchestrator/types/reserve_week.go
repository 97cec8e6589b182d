package types

import (
	"fmt"
	"math"
	"strings"

	"weekchain/pkg/calendar"
	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/model"
)

// ReserveWeekInput defines the input parameters for the reserve_week flow
type ReserveWeekInput struct {
	// Required fields
	Start     calendar.Date `json:"start_date"`
	End       calendar.Date `json:"end_date"`
	PartySize int           `json:"party_size"`
	Tier      model.Tier    `json:"tier"`
	HolderID  string        `json:"holder_id"`

	// Optional fields
	FlexDays          int    `json:"flexibility_days,omitempty"`
	Destination       string `json:"destination,omitempty"`
	Category          string `json:"category,omitempty"`
	AlternativesLimit int    `json:"alternatives_limit,omitempty"`
}

// ReserveWeekOutput documents the flow output
type ReserveWeekOutput struct {
	Outcome      string                      `json:"outcome"`
	Decision     *model.AdmissionDecision    `json:"decision,omitempty"`
	Match        *model.PropertyMatch        `json:"match,omitempty"`
	Reservation  *model.Reservation          `json:"reservation,omitempty"`
	Capacity     *model.GlobalCapacityStatus `json:"capacity,omitempty"`
	Alternatives []model.PropertyMatch       `json:"alternatives,omitempty"`
}

const (
	OutcomeReserved     = "reserved"
	OutcomeAlternatives = "alternatives"
	OutcomeWaitlisted   = "waitlisted"
)

func (i *ReserveWeekInput) MatchRequest() *model.MatchRequest {
	return &model.MatchRequest{
		Start:       i.Start,
		End:         i.End,
		FlexDays:    i.FlexDays,
		PartySize:   i.PartySize,
		Destination: i.Destination,
		Category:    i.Category,
		Tier:        i.Tier,
	}
}

func (i *ReserveWeekInput) Commit(match *model.PropertyMatch) *model.ReservationCommit {
	return &model.ReservationCommit{
		UnitID:    match.Unit.ID,
		CheckIn:   match.Start,
		CheckOut:  match.End,
		PartySize: i.PartySize,
		HolderID:  i.HolderID,
	}
}

func FromMapReserveWeek(input map[string]any) (*ReserveWeekInput, error) {
	i := &ReserveWeekInput{}
	var problems []string

	for key, target := range map[string]*calendar.Date{"start_date": &i.Start, "end_date": &i.End} {
		raw, _ := input[key].(string)
		if raw == "" {
			problems = append(problems, fmt.Sprintf("%s is required", key))
			continue
		}
		d, err := calendar.Parse(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be YYYY-MM-DD", key))
			continue
		}
		*target = d
	}

	if tier, ok := input["tier"].(string); ok && tier != "" {
		parsed, err := model.ParseTier(tier)
		if err != nil {
			problems = append(problems, err.Error())
		}
		i.Tier = parsed
	} else {
		problems = append(problems, "tier is required")
	}

	i.HolderID = strings.TrimSpace(stringValue(input["holder_id"]))
	if i.HolderID == "" {
		problems = append(problems, "holder_id is required")
	}
	i.Destination = strings.TrimSpace(stringValue(input["destination"]))
	i.Category = strings.TrimSpace(stringValue(input["category"]))

	var err error
	if i.PartySize, err = intValue(input, "party_size"); err != nil {
		problems = append(problems, err.Error())
	} else if i.PartySize < 1 {
		problems = append(problems, "party_size must be at least 1")
	}
	if i.FlexDays, err = intValue(input, "flexibility_days"); err != nil {
		problems = append(problems, err.Error())
	}
	if i.AlternativesLimit, err = intValue(input, "alternatives_limit"); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return nil, apperrors.Validation("reserve_week input validation failed", map[string]any{"errors": problems})
	}
	if !i.Start.Before(i.End) {
		return nil, apperrors.InvalidInput("end_date must be after start_date")
	}
	return i, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// intValue accepts JSON numbers (float64) and Go ints; a missing key is zero.
func intValue(input map[string]any, key string) (int, error) {
	switch v := input[key].(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}
