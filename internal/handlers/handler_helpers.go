package handlers

import (
	"net/http"
	"strconv"

	"salaogestor_backend/internal/middleware"
	"salaogestor_backend/internal/models"
	"salaogestor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// callerIdentity reads the authenticated caller, responding 401 when absent.
func callerIdentity(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing identity in context"))
		return models.Identity{}, false
	}
	return identity, true
}

// idParam parses the :id path parameter, responding 400 when malformed.
func idParam(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+what+" ID format.", c.Param("id")))
		return 0, false
	}
	return id, true
}

func respondBindError(c *gin.Context, op string, err error) {
	utils.LogError(err, op+": Failed to bind JSON")
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
}
