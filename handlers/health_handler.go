package handlers

import (
	"net/http"
	"time"

	"github.com/cloudgrid/api-gateway/app"
	"github.com/cloudgrid/api-gateway/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a liveness handler; it reports healthy whenever the
// process is serving.
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck returns a readiness handler validating that dependencies
// are reachable.
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string)
		status := "healthy"
		httpStatus := http.StatusOK

		if deps.DB != nil {
			if err := deps.DB.HealthCheck(r.Context()); err != nil {
				deps.Logger.Warn("database health check failed", zap.Error(err))
				checks["database"] = "unhealthy"
				status = "unhealthy"
				httpStatus = http.StatusServiceUnavailable
			} else {
				checks["database"] = "healthy"
			}
		}

		_ = utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		}})
	}
}
