package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"salaogestor_backend/internal/handlers"
	"salaogestor_backend/internal/middleware"
	"salaogestor_backend/internal/repositories"
	"salaogestor_backend/internal/schedule"
	"salaogestor_backend/internal/services"
	"salaogestor_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth         services.AuthService
	Clients      services.ClientService
	Staff        services.StaffService
	Appointments services.AppointmentService
	Schedule     services.ScheduleService
}

// NewServices wires repositories and services on one connection pool.
// now supplies the salon's local wall clock for the schedule view.
func NewServices(db *sql.DB, tokens *utils.TokenManager, now func() time.Time) Services {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	staffRepo := repositories.NewStaffRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)

	// Initialize Services
	return Services{
		Auth:         services.NewAuthService(authRepo, db, tokens),
		Clients:      services.NewClientService(clientRepo, db),
		Staff:        services.NewStaffService(staffRepo, authRepo, db),
		Appointments: services.NewAppointmentService(appointmentRepo, clientRepo, authRepo, db),
		Schedule:     services.NewScheduleService(appointmentRepo, staffRepo, now),
	}
}

// NewEngine creates the gin engine with the global middleware chain and /ping.
// Forwarding headers are honored only from trustedProxies; with none, the
// client IP is the connection's remote address.
func NewEngine(allowedOrigins, trustedProxies []string) (*gin.Engine, error) {
	engine := gin.New()
	if len(trustedProxies) == 0 {
		trustedProxies = nil
	}
	if err := engine.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return engine, nil
}

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the timeslot and isodate binding tags to gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		if err := v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
			return schedule.IsTimeSlot(fl.Field().String())
		}); err != nil {
			registerErr = fmt.Errorf("register timeslot validator: %w", err)
			return
		}
		if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := services.ParseDate(fl.Field().String())
			return err == nil
		}); err != nil {
			registerErr = fmt.Errorf("register isodate validator: %w", err)
		}
	})
	return registerErr
}

// Setup initializes the routing for the application. loginLimiter may be nil.
func Setup(engine *gin.Engine, svcs Services, tokens *utils.TokenManager, loginLimiter gin.HandlerFunc) error {
	if err := RegisterValidators(); err != nil {
		return err
	}

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(svcs.Auth)
	clientHandler := handlers.NewClientHandler(svcs.Clients)
	staffHandler := handlers.NewStaffHandler(svcs.Staff)
	appointmentHandler := handlers.NewAppointmentHandler(svcs.Appointments)
	scheduleHandler := handlers.NewScheduleHandler(svcs.Schedule)

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler, loginLimiter)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(tokens))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupAccountRoutes(authenticated, authHandler)
		SetupClientRoutes(authenticated, clientHandler)
		SetupStaffRoutes(authenticated, staffHandler)
		SetupAppointmentRoutes(authenticated, appointmentHandler)
		SetupScheduleRoutes(authenticated, scheduleHandler)
	}
	return nil
}
