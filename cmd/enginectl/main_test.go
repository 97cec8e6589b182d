package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"weekchain/pkg/model"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"enginectl"}, args...))
	return out.String(), err
}

func TestStatusPrintsCapacity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/capacity/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": model.GlobalCapacityStatus{Status: model.StatusYellow, UtilizationPercent: 55},
		})
	}))
	defer server.Close()

	out, err := runCLI(t, "--capacity-url", server.URL, "status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"YELLOW"`) {
		t.Errorf("status missing from output:\n%s", out)
	}
}

func TestToggleSendsActorAndState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/v1/capacity/tiers/Platinum" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var toggle model.SalesToggle
		if err := json.NewDecoder(r.Body).Decode(&toggle); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if toggle.Enabled == nil || *toggle.Enabled || toggle.Actor != "ops" {
			t.Errorf("unexpected toggle %+v", toggle)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": model.GlobalCapacityStatus{Status: model.StatusGreen}})
	}))
	defer server.Close()

	if _, err := runCLI(t, "--capacity-url", server.URL, "toggle", "--actor", "ops", "platinum", "off"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestToggleRejectsBadState(t *testing.T) {
	if _, err := runCLI(t, "toggle", "--actor", "ops", "Gold", "maybe"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestCanSellPrintsDeniedDecision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": model.AdmissionDecision{Tier: model.TierGold, Allowed: false, Reason: model.DenyReasonTierCeiling},
		})
	}))
	defer server.Close()

	out, err := runCLI(t, "--capacity-url", server.URL, "can-sell", "Gold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, model.DenyReasonTierCeiling) {
		t.Errorf("reason missing from output:\n%s", out)
	}
}

func TestMatchRejectsBadDate(t *testing.T) {
	_, err := runCLI(t, "match", "--start", "06/06/2026", "--end", "2026-06-13", "--party", "2")
	if err == nil {
		t.Fatal("expected date parse error")
	}
}

func TestMatchSendsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.PartySize != 4 || req.FlexDays != 14 || req.Destination != "Tulum" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"matched":false}}`))
	}))
	defer server.Close()

	out, err := runCLI(t, "--matcher-url", server.URL, "match",
		"--start", "2026-06-06", "--end", "2026-06-13", "--party", "4", "--flex", "14", "--destination", "Tulum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"matched": false`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}
