package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockMatchService struct {
	findBestFunc         func(ctx context.Context, req *model.MatchRequest) (*model.PropertyMatch, error)
	findAlternativesFunc func(ctx context.Context, exclude string, req *model.MatchRequest, limit int) ([]model.PropertyMatch, error)
}

func (m *mockMatchService) FindBestMatch(ctx context.Context, req *model.MatchRequest) (*model.PropertyMatch, error) {
	if m.findBestFunc != nil {
		return m.findBestFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockMatchService) FindAlternatives(ctx context.Context, exclude string, req *model.MatchRequest, limit int) ([]model.PropertyMatch, error) {
	if m.findAlternativesFunc != nil {
		return m.findAlternativesFunc(ctx, exclude, req, limit)
	}
	return []model.PropertyMatch{}, nil
}

func newRouter(svc *mockMatchService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewMatchHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestFindBest_NoMatchIsOK(t *testing.T) {
	router := newRouter(&mockMatchService{})

	body := `{"start_date":"2026-06-06","end_date":"2026-06-13","flexibility_days":0,"party_size":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/best", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data model.MatchResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Matched || resp.Data.Match != nil {
		t.Errorf("expected matched=false, got %+v", resp.Data)
	}
}

func TestFindBest_DecodesDates(t *testing.T) {
	var received *model.MatchRequest
	router := newRouter(&mockMatchService{
		findBestFunc: func(_ context.Context, req *model.MatchRequest) (*model.PropertyMatch, error) {
			received = req
			return &model.PropertyMatch{
				Unit:  &model.InventoryUnit{ID: "u-1"},
				Score: 150,
				Start: req.Start,
				End:   req.End,
			}, nil
		},
	})

	body := `{"start_date":"2026-06-06","end_date":"2026-06-13","flexibility_days":14,"party_size":4,"destination":"Tulum","category":"beach"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/matches/best", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if received == nil || received.Start.String() != "2026-06-06" || received.FlexDays != 14 {
		t.Fatalf("request not decoded: %+v", received)
	}
	if !strings.Contains(w.Body.String(), `"matched":true`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestFindBest_RejectsUnknownFields(t *testing.T) {
	router := newRouter(&mockMatchService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/matches/best", strings.NewReader(`{"party":2}`)))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFindAlternatives_PassesExcludeAndLimit(t *testing.T) {
	var gotExclude string
	var gotLimit int
	router := newRouter(&mockMatchService{
		findAlternativesFunc: func(_ context.Context, exclude string, _ *model.MatchRequest, limit int) ([]model.PropertyMatch, error) {
			gotExclude, gotLimit = exclude, limit
			return []model.PropertyMatch{{Unit: &model.InventoryUnit{ID: "u-2"}, Score: 50}}, nil
		},
	})

	body := `{"start_date":"2026-06-06","end_date":"2026-06-13","party_size":2,"exclude_unit_id":"u-1","limit":3}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/matches/alternatives", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotExclude != "u-1" || gotLimit != 3 {
		t.Errorf("exclude=%q limit=%d", gotExclude, gotLimit)
	}
	if !strings.Contains(w.Body.String(), `"count":1`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestFindAlternatives_ServiceUnavailable(t *testing.T) {
	router := newRouter(&mockMatchService{
		findAlternativesFunc: func(context.Context, string, *model.MatchRequest, int) ([]model.PropertyMatch, error) {
			return nil, apperrors.Unavailable("Inventory store", nil)
		},
	})

	body := `{"start_date":"2026-06-06","end_date":"2026-06-13","party_size":2}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/matches/alternatives", strings.NewReader(body)))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
