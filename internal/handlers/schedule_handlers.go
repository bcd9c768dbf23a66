package handlers

import (
	"net/http"

	"salaogestor_backend/internal/schedule"
	"salaogestor_backend/internal/services"
	"salaogestor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler serves the weekly appointment board.
type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// GetWeekView handles GET /schedule?week=N. A missing or malformed week
// shows the current week.
func (h *ScheduleHandler) GetWeekView(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	offset := schedule.ParseWeekOffset(c.Query("week"))

	view, err := h.scheduleService.GetWeekView(c.Request.Context(), caller, offset)
	if err != nil {
		utils.LogError(err, "GetWeekView: Error from scheduleService.GetWeekView")
		utils.RespondInternal(c, "Failed to build schedule.")
		return
	}
	c.JSON(http.StatusOK, view)
}
