package handlers

import (
	"errors"
	"net/http"

	"salaogestor_backend/internal/services"
	"salaogestor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StaffHandler serves staff display profiles.
type StaffHandler struct {
	staffService services.StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(ss services.StaffService) *StaffHandler {
	return &StaffHandler{staffService: ss}
}

func respondStaffError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrStaffProfileNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Staff profile not found.", err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No account exists for this email.", err.Error()))
	case errors.Is(err, services.ErrStaffValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondInternal(c, fallback)
	}
}

func (h *StaffHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.staffService.ListProfiles(c.Request.Context())
	if err != nil {
		utils.LogError(err, "ListProfiles: Error from staffService.ListProfiles")
		utils.RespondInternal(c, "Failed to fetch staff profiles.")
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *StaffHandler) GetMyProfile(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	profile, err := h.staffService.GetProfile(c.Request.Context(), caller.Email)
	if err != nil {
		if !errors.Is(err, services.ErrStaffProfileNotFound) {
			utils.LogError(err, "GetMyProfile: Error from staffService.GetProfile")
		}
		respondStaffError(c, err, "Failed to fetch staff profile.")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *StaffHandler) UpsertMyProfile(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	h.upsert(c, caller.Email)
}

// UpsertProfile lets an admin maintain any staff member's profile.
func (h *StaffHandler) UpsertProfile(c *gin.Context) {
	h.upsert(c, c.Param("email"))
}

func (h *StaffHandler) upsert(c *gin.Context, email string) {
	var req services.UpsertStaffProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "UpsertProfile", err)
		return
	}

	profile, err := h.staffService.UpsertProfile(c.Request.Context(), email, req)
	if err != nil {
		utils.LogError(err, "UpsertProfile: Error from staffService.UpsertProfile for "+email)
		respondStaffError(c, err, "Failed to save staff profile.")
		return
	}
	c.JSON(http.StatusOK, profile)
}
