package validator

import (
	"errors"
	"testing"

	"weekchain/pkg/calendar"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"
)

func newTestValidator() *MatchValidator {
	return NewMatchValidator(logger.New(logger.Config{Level: logger.ERROR}))
}

func validRequest() *model.MatchRequest {
	return &model.MatchRequest{
		Start:     calendar.MustParse("2026-06-06"),
		End:       calendar.MustParse("2026-06-13"),
		FlexDays:  14,
		PartySize: 4,
		Category:  "beach",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.MatchRequest)
		wantField string
	}{
		{name: "valid", mutate: func(*model.MatchRequest) {}},
		{name: "any category", mutate: func(r *model.MatchRequest) { r.Category = "any" }},
		{name: "missing start", mutate: func(r *model.MatchRequest) { r.Start = calendar.Date{} }, wantField: "Start"},
		{name: "zero party", mutate: func(r *model.MatchRequest) { r.PartySize = 0 }, wantField: "PartySize"},
		{name: "negative flexibility", mutate: func(r *model.MatchRequest) { r.FlexDays = -7 }, wantField: "FlexDays"},
		{name: "bad category", mutate: func(r *model.MatchRequest) { r.Category = "$$$" }, wantField: "Category"},
		{name: "end equals start", mutate: func(r *model.MatchRequest) { r.End = r.Start }, wantField: "EndDate"},
		{name: "end before start", mutate: func(r *model.MatchRequest) { r.End = r.Start.AddDays(-1) }, wantField: "EndDate"},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.Validate(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %s, want %s", verrs[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidateUnit(t *testing.T) {
	v := newTestValidator()
	unit := &model.InventoryUnit{
		ID:           "u-1",
		AssetID:      "a-1",
		Country:      "Mexico",
		City:         "Tulum",
		Category:     "beach",
		Tier:         model.TierGold,
		MaxOccupancy: 6,
		Status:       model.UnitStatusActive,
	}
	if err := v.ValidateUnit(unit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unit.Tier = "Bronze"
	if err := v.ValidateUnit(unit); err == nil {
		t.Error("expected tier error")
	}
}
