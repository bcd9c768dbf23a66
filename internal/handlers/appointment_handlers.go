package handlers

import (
	"errors"
	"net/http"
	"time"

	"salaogestor_backend/internal/models"
	"salaogestor_backend/internal/services"
	"salaogestor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler holds the appointment service.
type AppointmentHandler struct {
	appointmentService services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(as services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: as}
}

func respondAppointmentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAppointmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
	case errors.Is(err, services.ErrSlotTaken):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "This slot is already booked.", err.Error()))
	case errors.Is(err, services.ErrAppointmentStatusFinal):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Appointment can no longer change status.", err.Error()))
	case errors.Is(err, services.ErrAppointmentForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You can only manage your own appointments.", err.Error()))
	case errors.Is(err, services.ErrClientForAppointmentNotFound),
		errors.Is(err, services.ErrStaffForAppointmentNotFound),
		errors.Is(err, services.ErrInvalidTimeSlot),
		errors.Is(err, services.ErrNotWorkingDay),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrAppointmentValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondInternal(c, fallback)
	}
}

// CreateAppointment books a client into a schedule slot.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req services.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "CreateAppointment", err)
		return
	}

	appt, err := h.appointmentService.CreateAppointment(c.Request.Context(), caller, req)
	if err != nil {
		utils.LogError(err, "CreateAppointment: Error from appointmentService.CreateAppointment")
		respondAppointmentError(c, err, "Failed to create appointment.")
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// GetAppointments lists appointments visible to the caller.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var filters models.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	for param, dst := range map[string]**time.Time{"date_from": &filters.DateFrom, "date_to": &filters.DateTo} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := services.ParseDate(raw)
		if err != nil {
			utils.RespondValidationFailed(c, param+": "+err.Error())
			return
		}
		*dst = &d
	}

	appts, total, err := h.appointmentService.GetAppointments(c.Request.Context(), caller, filters)
	if err != nil {
		utils.LogError(err, "GetAppointments: Error from appointmentService.GetAppointments")
		respondAppointmentError(c, err, "Failed to fetch appointments.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      appts,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "appointment")
	if !ok {
		return
	}

	appt, err := h.appointmentService.GetAppointmentByID(c.Request.Context(), caller, id)
	if err != nil {
		utils.LogError(err, "GetAppointmentByID: Error from appointmentService.GetAppointmentByID for ID "+utils.Int64ToStr(id))
		respondAppointmentError(c, err, "Failed to fetch appointment.")
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) FinishAppointment(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "appointment")
	if !ok {
		return
	}

	appt, err := h.appointmentService.FinishAppointment(c.Request.Context(), caller, id)
	if err != nil {
		utils.LogError(err, "FinishAppointment: Error for ID "+utils.Int64ToStr(id))
		respondAppointmentError(c, err, "Failed to finish appointment.")
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "appointment")
	if !ok {
		return
	}

	appt, err := h.appointmentService.CancelAppointment(c.Request.Context(), caller, id)
	if err != nil {
		utils.LogError(err, "CancelAppointment: Error for ID "+utils.Int64ToStr(id))
		respondAppointmentError(c, err, "Failed to cancel appointment.")
		return
	}
	c.JSON(http.StatusOK, appt)
}
