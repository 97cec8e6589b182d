package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/kafka"
	"weekchain/pkg/model"
)

func TestCapacityClient_CanSellDecodesDeniedDecision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/capacity/tiers/Gold/can-sell" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":  model.AdmissionDecision{Tier: model.TierGold, Allowed: false, Reason: model.DenyReasonUnavailable},
			"error": "capacity store is temporarily unavailable",
			"code":  apperrors.CodeUnavailable,
		})
	}))
	defer server.Close()

	c := NewCapacityClient(server.URL)
	decision, err := c.CanSell(context.Background(), model.TierGold)
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if !apperrors.HasCode(err, apperrors.CodeUnavailable) {
		t.Errorf("expected unavailable code, got %v", err)
	}
	if decision == nil || decision.Allowed {
		t.Errorf("expected a denied decision, got %+v", decision)
	}
}

func TestReservationClient_CommitSurfacesMatchUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"taken","code":"MATCH_UNAVAILABLE","details":{"unit_id":"u-7"}}`))
	}))
	defer server.Close()

	c := NewReservationClient(server.URL)
	_, err := c.Commit(context.Background(), &model.ReservationCommit{UnitID: "u-7"})
	if !apperrors.HasCode(err, apperrors.CodeMatchUnavailable) {
		t.Fatalf("expected MATCH_UNAVAILABLE, got %v", err)
	}
	if apperrors.AsAppError(err).Details["unit_id"] != "u-7" {
		t.Error("details should be preserved")
	}
}

func TestMatcherClient_FindBest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"matched":true,"match":{"unit":{"id":"u-1"},"score":150,"start_date":"2026-06-06","end_date":"2026-06-13","offset_days":0}}}`))
	}))
	defer server.Close()

	c := NewMatcherClient(server.URL)
	out, err := c.FindBest(context.Background(), &model.MatchRequest{PartySize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Matched || out.Match.Unit.ID != "u-1" || out.Match.Score != 150 {
		t.Errorf("unexpected response %+v", out)
	}
	if out.Match.Start.String() != "2026-06-06" {
		t.Errorf("start date not decoded: %s", out.Match.Start)
	}
}

func TestOrchestratorClient_ExecuteUnwrapsOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Flow  string         `json:"flow"`
			Input map[string]any `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Flow != "reserve_week" || req.Input["tier"] != "Gold" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"flow":"reserve_week","output":{"outcome":"waitlisted"}}}`))
	}))
	defer server.Close()

	out, err := NewOrchestratorClient(server.URL).Execute(context.Background(), "reserve_week", map[string]any{"tier": "Gold"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["outcome"] != "waitlisted" {
		t.Errorf("unexpected output %v", out)
	}
}

func TestOrchestratorClient_UnknownFlowIsInvalidInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown flow","code":"INVALID_INPUT"}`))
	}))
	defer server.Close()

	_, err := NewOrchestratorClient(server.URL).Execute(context.Background(), "nope", nil)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestHttpClient_ForwardsCorrelationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Request-ID"); got != "req-123" {
			t.Errorf("X-Request-ID = %q, want req-123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"status":"GREEN"}}`))
	}))
	defer server.Close()

	ctx := kafka.WithCorrelationID(context.Background(), "req-123")
	if _, err := NewCapacityClient(server.URL).Status(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
