package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deckwatch/pkg/history"
	"deckwatch/pkg/response"
)

// GetHistory lists recent check runs, newest first.
// @Summary Check history
// @Description Lists recent check runs, newest first
// @Tags Checks
// @Produce json
// @Param limit query int false "Maximum runs to return (1-500)" default(20)
// @Success 200 {object} models.HistoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/history [get]
func (h *HandlerService) GetHistory(c *gin.Context) {
	if h.deps.History == nil {
		HandleError(c, NewServiceUnavailableError("Check history disabled", nil))
		return
	}

	limit := history.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > history.MaxLimit {
			HandleError(c, NewBadRequestError(
				fmt.Sprintf("limit must be between 1 and %d", history.MaxLimit),
				fmt.Errorf("%w: limit=%q", ErrInvalidParam, raw)))
			return
		}
		limit = n
	}

	runs, err := h.deps.History.Recent(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.WriteSuccess(c, http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
		"limit": limit,
	})
}
