package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "plain date", input: "2026-03-14", want: New(2026, time.March, 14)},
		{name: "surrounding spaces", input: "  2026-03-14 ", want: New(2026, time.March, 14)},
		{name: "timestamp rejected", input: "2026-03-14T10:00:00Z", wantErr: true},
		{name: "garbage", input: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddDaysKeepsWeekday(t *testing.T) {
	sat := New(2026, time.May, 2)
	if sat.Weekday() != time.Saturday {
		t.Fatalf("fixture should be a saturday, got %s", sat.Weekday())
	}
	for _, offset := range []int{-21, -14, -7, 7, 14, 21} {
		shifted := sat.AddDays(offset)
		if shifted.Weekday() != time.Saturday {
			t.Errorf("offset %d moved weekday to %s", offset, shifted.Weekday())
		}
		if sat.DaysUntil(shifted) != offset {
			t.Errorf("DaysUntil = %d, want %d", sat.DaysUntil(shifted), offset)
		}
	}
}

func TestFromTimeDropsClock(t *testing.T) {
	in := time.Date(2026, time.July, 4, 23, 59, 0, 0, time.UTC)
	if got := FromTime(in); !got.Equal(New(2026, time.July, 4)) {
		t.Errorf("FromTime = %s", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
	}
	data, err := json.Marshal(payload{Start: New(2026, time.January, 10)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"start":"2026-01-10"}` {
		t.Fatalf("unexpected json %s", data)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"start":"2026-02-01"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Start.String() != "2026-02-01" {
		t.Errorf("got %s", p.Start)
	}

	if err := json.Unmarshal([]byte(`{"start":"01/02/2026"}`), &p); err == nil {
		t.Error("expected error for non ISO date")
	}
}

func TestBSONRoundTrip(t *testing.T) {
	type doc struct {
		CheckIn Date `bson:"check_in"`
	}
	raw, err := bson.Marshal(doc{CheckIn: New(2026, time.August, 8)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out doc
	if err := bson.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.CheckIn.Equal(New(2026, time.August, 8)) {
		t.Errorf("got %s", out.CheckIn)
	}
}
