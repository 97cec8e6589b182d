package handler

import (
	"context"
	"net/http"

	apperrors "weekchain/pkg/errors"
	httputil "weekchain/pkg/http"
	"weekchain/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type FlowService interface {
	ExecuteFlow(ctx context.Context, flowName string, input map[string]any) (map[string]any, error)
	GetAvailableFlows() []string
}

type FlowHandler struct {
	service FlowService
	log     *logger.Logger
}

func NewFlowHandler(service FlowService, log *logger.Logger) *FlowHandler {
	return &FlowHandler{
		service: service,
		log:     log,
	}
}

type ExecuteFlowRequest struct {
	Flow  string         `json:"flow"`
	Input map[string]any `json:"input"`
}

type ExecuteFlowResponse struct {
	Flow   string         `json:"flow"`
	Output map[string]any `json:"output"`
}

type ListFlowsResponse struct {
	Flows []string `json:"flows"`
}

func (h *FlowHandler) ExecuteFlow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ExecuteFlowRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "ExecuteFlow", err)
		return
	}

	if req.Flow == "" {
		h.writeError(w, "ExecuteFlow", apperrors.InvalidInput("flow name is required"))
		return
	}

	if req.Input == nil {
		req.Input = make(map[string]any)
	}

	h.log.Info("executing flow", "flow", req.Flow)

	output, err := h.service.ExecuteFlow(r.Context(), req.Flow, req.Input)
	if err != nil {
		h.log.Warn("flow execution failed", "flow", req.Flow, "error", err)
		h.writeError(w, "ExecuteFlow", err)
		return
	}

	if err := httputil.WriteSuccess(w, ExecuteFlowResponse{Flow: req.Flow, Output: output}); err != nil {
		h.log.Error("failed to write success response", "handler", "ExecuteFlow", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, ListFlowsResponse{Flows: h.service.GetAvailableFlows()}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListFlows", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FlowHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *FlowHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/orchestrator/execute", h.ExecuteFlow)
	router.GET("/api/v1/orchestrator/flows", h.ListFlows)
}
