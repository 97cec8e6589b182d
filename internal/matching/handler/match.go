package handler

import (
	"net/http"

	"weekchain/internal/matching/service"
	httputil "weekchain/pkg/http"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type MatchHandler struct {
	service service.MatchService
	log     *logger.Logger
}

func NewMatchHandler(service service.MatchService, log *logger.Logger) *MatchHandler {
	return &MatchHandler{
		service: service,
		log:     log,
	}
}

func (h *MatchHandler) FindBest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.MatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FindBest", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	match, err := h.service.FindBestMatch(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FindBest", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, model.MatchResponse{
		Matched: match != nil,
		Match:   match,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "FindBest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MatchHandler) FindAlternatives(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AlternativesRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FindAlternatives", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	alternatives, err := h.service.FindAlternatives(r.Context(), req.ExcludeUnitID, &req.MatchRequest, req.Limit)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FindAlternatives", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, model.AlternativesResponse{
		Alternatives: alternatives,
		Count:        len(alternatives),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "FindAlternatives", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MatchHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/matches/best", h.FindBest)
	router.POST("/api/v1/matches/alternatives", h.FindAlternatives)
}
