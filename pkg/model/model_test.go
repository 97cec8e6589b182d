package model

import (
	"testing"

	"weekchain/pkg/calendar"
)

func TestDateRangeOverlapsIsHalfOpen(t *testing.T) {
	base := NewDateRange(calendar.MustParse("2026-06-06"), calendar.MustParse("2026-06-13"))

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"back to back after", NewDateRange(calendar.MustParse("2026-06-13"), calendar.MustParse("2026-06-20")), false},
		{"back to back before", NewDateRange(calendar.MustParse("2026-05-30"), calendar.MustParse("2026-06-06")), false},
		{"one day inside", NewDateRange(calendar.MustParse("2026-06-12"), calendar.MustParse("2026-06-13")), true},
		{"enclosing", NewDateRange(calendar.MustParse("2026-06-01"), calendar.MustParse("2026-06-30")), true},
		{"tail overlap", NewDateRange(calendar.MustParse("2026-06-10"), calendar.MustParse("2026-06-17")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps(%s) = %v, want %v", tt.other, got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("overlap should be symmetric for %s", tt.other)
			}
		})
	}
}

func TestDateRangeShiftAndNights(t *testing.T) {
	r := NewDateRange(calendar.MustParse("2026-06-06"), calendar.MustParse("2026-06-13"))
	if r.Nights() != 7 {
		t.Errorf("Nights() = %d, want 7", r.Nights())
	}
	shifted := r.Shift(-14)
	if shifted.Start.String() != "2026-05-23" || shifted.End.String() != "2026-05-30" {
		t.Errorf("unexpected shift result %s", shifted)
	}
	if shifted.Nights() != r.Nights() {
		t.Error("shifting must preserve length")
	}
}

func TestDateRangeValid(t *testing.T) {
	d := calendar.MustParse("2026-06-06")
	if NewDateRange(d, d).Valid() {
		t.Error("empty range should be invalid")
	}
	if NewDateRange(d.AddDays(1), d).Valid() {
		t.Error("reversed range should be invalid")
	}
	if !NewDateRange(d, d.AddDays(1)).Valid() {
		t.Error("single night should be valid")
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		input   string
		want    Tier
		wantErr bool
	}{
		{"Gold", TierGold, false},
		{"gold", TierGold, false},
		{" SIGNATURE ", TierSignature, false},
		{"Bronze", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTier(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTier(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
