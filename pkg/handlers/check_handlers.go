package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deckwatch/pkg/monitor"
)

// TriggerCheck runs a check now and returns its report. A failed check is
// still a 200 carrying the report; 409 means another check holds the browser.
// @Summary Trigger a check
// @Description Runs a stock check now. A failed check still answers 200 with its report
// @Tags Checks
// @Produce json
// @Success 200 {object} models.CheckReport
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/check [post]
func (h *HandlerService) TriggerCheck(c *gin.Context) {
	if h.deps.Monitor == nil {
		HandleError(c, NewServiceUnavailableError("Monitor not available", nil))
		return
	}

	report, err := h.deps.Monitor.Check(c.Request.Context())
	if report == nil {
		if err == nil {
			err = monitor.ErrCheckInProgress
		}
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
