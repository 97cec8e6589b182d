package handler

import (
	"net/http"

	"weekchain/internal/snapshots/service"
	httputil "weekchain/pkg/http"
	kafka_middleware "weekchain/pkg/kafka/middleware"
	"weekchain/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type SnapshotHandler struct {
	service service.SnapshotService
	metrics *kafka_middleware.Metrics
	lag     func() int64
	log     *logger.Logger
}

type consumerStats struct {
	kafka_middleware.MetricsSnapshot
	Lag int64 `json:"lag"`
}

// NewSnapshotHandler serves the snapshot history. metrics may be nil, in which case the
// consumer stats route is not registered.
func NewSnapshotHandler(service service.SnapshotService, metrics *kafka_middleware.Metrics, log *logger.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		service: service,
		metrics: metrics,
		log:     log,
	}
}

// WithLag adds the consumer group lag to the stats response.
func (h *SnapshotHandler) WithLag(lag func() int64) *SnapshotHandler {
	h.lag = lag
	return h
}

func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	snapshots, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, snapshots, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *SnapshotHandler) ConsumerStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats := consumerStats{MetricsSnapshot: h.metrics.Snapshot()}
	if h.lag != nil {
		stats.Lag = h.lag()
	}
	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "ConsumerStats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SnapshotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/snapshots", h.List)
	if h.metrics != nil {
		router.GET("/api/v1/snapshots/consumer-stats", h.ConsumerStats)
	}
}
