package handler

import (
	"net/http"
	"time"

	"maximally-judging/pkg/database"
	"maximally-judging/pkg/logger"
	"maximally-judging/pkg/redis"
)

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	db     *database.PostgresDB
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthHandler creates a health handler. redisClient may be nil.
func NewHealthHandler(db *database.PostgresDB, redisClient *redis.Client, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK

	checks := map[string]string{}

	if err := h.db.Health(ctx); err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		checks["database"] = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.redis == nil {
		checks["redis"] = "disabled"
	} else if err := h.redis.Health(ctx); err != nil {
		h.logger.WithError(err).Warn("Redis health check failed")
		// Redis is an optimization, not a dependency; report but stay up.
		checks["redis"] = "unhealthy"
	} else {
		checks["redis"] = "ok"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	respondJSON(w, status, HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Service:   "maximally-judging",
		Checks:    checks,
	})
}
