package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deckwatch/pkg/models"
	"deckwatch/pkg/monitor"
)

// RefreshSession starts the recovery chain in the background and answers 202.
// @Summary Refresh session
// @Description Starts the login recovery chain in the background
// @Tags Session
// @Produce json
// @Success 202 {object} models.AcceptedResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/session/refresh [post]
func (h *HandlerService) RefreshSession(c *gin.Context) {
	if h.deps.Monitor == nil {
		HandleError(c, NewServiceUnavailableError("Monitor not available", nil))
		return
	}
	if h.deps.Monitor.Status().InProgress {
		HandleError(c, monitor.ErrCheckInProgress)
		return
	}

	h.background.Add(1)
	go func() {
		defer h.background.Done()
		rec, err := h.deps.Monitor.RefreshSession(h.ctx)
		switch {
		case errors.Is(err, monitor.ErrCheckInProgress):
			h.logger.Info("Session refresh skipped, check in progress")
		case err != nil:
			h.logger.Warn("Session refresh failed", zap.Error(err))
		default:
			h.logger.Info("Session refreshed", zap.String("strategy", rec.Strategy))
		}
	}()

	c.JSON(http.StatusAccepted, models.AcceptedResponse{
		Status:    "accepted",
		Message:   "session refresh started",
		Timestamp: getCurrentTimestamp(),
	})
}

// CompleteLogin signals that the operator finished the login in the browser.
// @Summary Complete manual login
// @Description Signals that the login was completed by hand in the visible browser
// @Tags Session
// @Produce json
// @Success 200 {object} models.DeliveredResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/session/done [post]
func (h *HandlerService) CompleteLogin(c *gin.Context) {
	if h.deps.Manual == nil {
		HandleError(c, NewServiceUnavailableError("Manual login not available", nil))
		return
	}
	if !h.deps.Manual.Done() {
		HandleError(c, NewConflictError("No login is waiting for manual completion", nil))
		return
	}
	c.JSON(http.StatusOK, models.DeliveredResponse{
		Status:    "delivered",
		Timestamp: getCurrentTimestamp(),
	})
}

// GetCookieStatus reports the cookie file's age, size and session flag.
// @Summary Cookie file status
// @Description Reports the cookie file's age, size and session flag
// @Tags Session
// @Produce json
// @Success 200 {object} models.CookieStatus
// @Failure 500 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/session/cookies [get]
func (h *HandlerService) GetCookieStatus(c *gin.Context) {
	if h.deps.Cookies == nil {
		HandleError(c, NewServiceUnavailableError("Cookie store not available", nil))
		return
	}
	st, err := h.deps.Cookies.Stat()
	if err != nil {
		HandleError(c, NewAPIError(http.StatusInternalServerError, "Failed to read cookie file", err))
		return
	}
	c.JSON(http.StatusOK, st)
}
