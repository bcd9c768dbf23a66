package router

import (
	"salaogestor_backend/internal/handlers"
	"salaogestor_backend/internal/middleware"
	"salaogestor_backend/internal/models"

	"github.com/gin-gonic/gin"
)

var (
	adminOnly    = middleware.RoleAuthMiddleware(models.RoleAdmin)
	anyStaffRole = middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleEmployee)
)

// SetupPublicAuthRoutes sets up /register and /login.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler, loginLimiter gin.HandlerFunc) {
	group.POST("/register", authHandler.RegisterUser)
	if loginLimiter != nil {
		group.POST("/login", loginLimiter, authHandler.LoginUser)
	} else {
		group.POST("/login", authHandler.LoginUser)
	}
}

// SetupAuthenticatedAuthRoutes sets up the routes acting on the caller's own account.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
	group.POST("/logout", authHandler.LogoutUser)
	group.PUT("/password", authHandler.ChangePassword)
}

// SetupAccountRoutes sets up admin account management.
func SetupAccountRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	accountRoutes := authenticatedGroup.Group("/accounts")
	accountRoutes.Use(adminOnly)
	{
		accountRoutes.POST("", authHandler.CreateAccount)
		accountRoutes.PUT("/:id/password", authHandler.ResetPassword)
	}
}

// SetupClientRoutes sets up the client routes. Writes are admin only.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	clientRoutes.Use(anyStaffRole)
	{
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.POST("", adminOnly, clientHandler.CreateClient)
		clientRoutes.PUT("/:id", adminOnly, clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", adminOnly, clientHandler.DeleteClient)
	}
}

// SetupStaffRoutes sets up the staff profile routes.
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler) {
	staffRoutes := authenticatedGroup.Group("/staff")
	staffRoutes.Use(anyStaffRole)
	{
		staffRoutes.GET("", staffHandler.ListProfiles)
		staffRoutes.GET("/me", staffHandler.GetMyProfile)
		staffRoutes.PUT("/me", staffHandler.UpsertMyProfile)
		staffRoutes.PUT("/:email", adminOnly, staffHandler.UpsertProfile)
	}
}

// SetupAppointmentRoutes sets up the appointment routes. Scoping by role
// happens in the service.
func SetupAppointmentRoutes(authenticatedGroup *gin.RouterGroup, appointmentHandler *handlers.AppointmentHandler) {
	appointmentRoutes := authenticatedGroup.Group("/appointments")
	appointmentRoutes.Use(anyStaffRole)
	{
		appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
		appointmentRoutes.GET("", appointmentHandler.GetAppointments)
		appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
		appointmentRoutes.PATCH("/:id/finish", appointmentHandler.FinishAppointment)
		appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
	}
}

// SetupScheduleRoutes sets up the weekly board.
func SetupScheduleRoutes(authenticatedGroup *gin.RouterGroup, scheduleHandler *handlers.ScheduleHandler) {
	authenticatedGroup.GET("/schedule", anyStaffRole, scheduleHandler.GetWeekView)
}
