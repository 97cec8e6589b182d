package handler

import (
	"net/http"

	"weekchain/internal/capacity/service"
	httputil "weekchain/pkg/http"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CapacityHandler struct {
	service service.CapacityService
	log     *logger.Logger
}

func NewCapacityHandler(service service.CapacityService, log *logger.Logger) *CapacityHandler {
	return &CapacityHandler{
		service: service,
		log:     log,
	}
}

func (h *CapacityHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	status, err := h.service.GlobalStatus(r.Context())
	if err != nil {
		h.writeError(w, "Status", err)
		return
	}
	h.writeSuccess(w, "Status", status)
}

// CanSell answers 200 with the decision, or the error status with the denied decision in data.
func (h *CapacityHandler) CanSell(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	decision, err := h.service.CanSell(r.Context(), model.Tier(ps.ByName("tier")))
	if err != nil {
		if writeErr := httputil.WriteErrorWithData(w, err, decision); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CanSell", "operation", "WriteErrorWithData", "error", writeErr)
		}
		return
	}
	h.writeSuccess(w, "CanSell", decision)
}

func (h *CapacityHandler) CommitSale(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	status, err := h.service.CommitSale(r.Context(), model.Tier(ps.ByName("tier")))
	if err != nil {
		h.writeError(w, "CommitSale", err)
		return
	}
	h.writeSuccess(w, "CommitSale", status)
}

func (h *CapacityHandler) ReleaseSale(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	status, err := h.service.ReleaseSale(r.Context(), model.Tier(ps.ByName("tier")))
	if err != nil {
		h.writeError(w, "ReleaseSale", err)
		return
	}
	h.writeSuccess(w, "ReleaseSale", status)
}

func (h *CapacityHandler) SetSalesEnabled(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var toggle model.SalesToggle
	if err := httputil.DecodeJSON(r, &toggle); err != nil {
		h.writeError(w, "SetSalesEnabled", err)
		return
	}

	status, err := h.service.SetSalesEnabled(r.Context(), model.Tier(ps.ByName("tier")), &toggle)
	if err != nil {
		h.writeError(w, "SetSalesEnabled", err)
		return
	}
	h.writeSuccess(w, "SetSalesEnabled", status)
}

func (h *CapacityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CapacityHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *CapacityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/capacity/status", h.Status)
	router.GET("/api/v1/capacity/tiers/:tier/can-sell", h.CanSell)
	router.POST("/api/v1/capacity/tiers/:tier/sales", h.CommitSale)
	router.DELETE("/api/v1/capacity/tiers/:tier/sales", h.ReleaseSale)
	router.PATCH("/api/v1/capacity/tiers/:tier", h.SetSalesEnabled)
}
