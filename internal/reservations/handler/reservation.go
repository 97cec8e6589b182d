package handler

import (
	"net/http"

	"weekchain/internal/reservations/service"
	httputil "weekchain/pkg/http"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Commit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var commit model.ReservationCommit
	if err := httputil.DecodeJSON(r, &commit); err != nil {
		h.writeError(w, "Commit", err)
		return
	}

	reservation, err := h.service.Commit(r.Context(), &commit)
	if err != nil {
		h.writeError(w, "Commit", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Commit", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) ListByUnit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservations, err := h.service.ListByUnit(r.Context(), ps.ByName("unit_id"))
	if err != nil {
		h.writeError(w, "ListByUnit", err)
		return
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByUnit", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Commit)
	router.DELETE("/api/v1/reservations/id/:id", h.Cancel)
	router.GET("/api/v1/reservations/unit/:unit_id", h.ListByUnit)
}
