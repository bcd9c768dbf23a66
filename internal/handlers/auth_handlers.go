package handlers

import (
	"errors"
	"net/http"

	"salaogestor_backend/internal/services"
	"salaogestor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

func respondAccountError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAccountEmailExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrAccountValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "User not found.", err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", err.Error()))
	default:
		utils.RespondInternal(c, fallback)
	}
}

// RegisterUser handles public sign-up. New accounts are always employees.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req services.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "RegisterUser", err)
		return
	}

	user, err := h.authService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "RegisterUser: Error from authService.RegisterUser")
		respondAccountError(c, err, "Failed to register user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// CreateAccount lets an admin create an account with any role.
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req services.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "CreateAccount", err)
		return
	}

	user, err := h.authService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateAccount: Error from authService.CreateAccount")
		respondAccountError(c, err, "Failed to create account.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// LoginUser handles user login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "LoginUser", err)
		return
	}

	authResp, err := h.authService.LoginUser(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "LoginUser: Error from authService.LoginUser")
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", ""))
		} else {
			utils.RespondInternal(c, "Failed to login.")
		}
		return
	}
	c.JSON(http.StatusOK, authResp)
}

// GetCurrentUser retrieves the account of the currently authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		utils.LogError(err, "GetCurrentUser: Error from authService.GetUserProfile for userID "+utils.Int64ToStr(caller.UserID))
		respondAccountError(c, err, "Failed to retrieve user profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// LogoutUser acknowledges a logout. Tokens are stateless; clients discard them.
func (h *AuthHandler) LogoutUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully. Please discard your token."})
}

// ChangePassword lets the caller replace their own password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "ChangePassword", err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), caller.UserID, req); err != nil {
		utils.LogError(err, "ChangePassword: Error from authService.ChangePassword")
		respondAccountError(c, err, "Failed to change password.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ResetPassword lets an admin set a new password for any account.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	userID, ok := idParam(c, "user")
	if !ok {
		return
	}
	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "ResetPassword", err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), userID, req); err != nil {
		utils.LogError(err, "ResetPassword: Error from authService.ResetPassword for userID "+utils.Int64ToStr(userID))
		respondAccountError(c, err, "Failed to reset password.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
