package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"deckwatch/pkg/models"
)

// Service identity reported by the health and status endpoints.
const (
	ServiceName    = "deckwatch"
	ServiceVersion = "1.0.0"
)

// HealthCheck reports liveness and whether a session cookie is on disk.
// @Summary Health check
// @Description Reports liveness and whether a session cookie is stored
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (h *HandlerService) HealthCheck(c *gin.Context) {
	resp := models.HealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Version:   ServiceVersion,
		Timestamp: getCurrentTimestamp(),
		Checks:    map[string]models.ProbeStatus{},
	}

	if h.deps.Cookies != nil {
		st, err := h.deps.Cookies.Stat()
		switch {
		case err != nil:
			resp.Checks["cookies"] = models.ProbeStatus{Status: "unhealthy", Error: err.Error()}
			resp.Status = "unhealthy"
		case !st.Authenticated:
			resp.Checks["cookies"] = models.ProbeStatus{Status: "degraded", Details: map[string]any{"exists": st.Exists}}
		default:
			resp.Checks["cookies"] = models.ProbeStatus{Status: "healthy", Details: map[string]any{"mod_time": st.ModTime}}
		}
	}
	if h.deps.Monitor != nil {
		st := h.deps.Monitor.Status()
		resp.Checks["monitor"] = models.ProbeStatus{Status: "healthy", Details: map[string]any{
			"running":     st.Running,
			"in_progress": st.InProgress,
		}}
	}

	if resp.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatus returns the watch loop snapshot.
// @Summary Watcher status
// @Description Returns the watch loop snapshot, counters and the next scheduled run
// @Tags System
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/status [get]
func (h *HandlerService) GetStatus(c *gin.Context) {
	if h.deps.Monitor == nil {
		HandleError(c, NewServiceUnavailableError("Monitor not available", nil))
		return
	}
	status := gin.H{
		"service":   ServiceName,
		"version":   ServiceVersion,
		"timestamp": getCurrentTimestamp(),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"monitor":   h.deps.Monitor.Status(),
	}
	if h.deps.Manual != nil {
		status["manual_login_pending"] = h.deps.Manual.Pending()
	}
	c.JSON(http.StatusOK, status)
}
