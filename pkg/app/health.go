package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	httputil "medibook/pkg/http"
	"medibook/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Cache    string `json:"cache,omitempty"`
}

// HealthHandler serves liveness and readiness. Redis is optional: a missing
// client reports "disabled" and never fails readiness.
type HealthHandler struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
	log         *logger.Logger
}

func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		redisClient: redisClient,
		log:         log,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ready", Database: "ok", Cache: "disabled"}
	status := http.StatusOK

	if h.mongoClient == nil {
		resp.Status, resp.Database = "unavailable", "error"
		status = http.StatusServiceUnavailable
	} else if err := h.mongoClient.Ping(ctx, nil); err != nil {
		h.log.Error("Database health check failed",
			"error", err,
			"path", r.URL.Path,
		)
		resp.Status, resp.Database = "unavailable", "error"
		status = http.StatusServiceUnavailable
	}

	if h.redisClient != nil {
		resp.Cache = "ok"
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			h.log.Warn("Cache health check failed", "error", err)
			resp.Cache = "degraded"
		}
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
