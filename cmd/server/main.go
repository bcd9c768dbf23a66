package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"salaogestor_backend/internal/config"
	"salaogestor_backend/internal/database"
	"salaogestor_backend/internal/middleware"
	"salaogestor_backend/internal/router"
	"salaogestor_backend/internal/telemetry"
	"salaogestor_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", true)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize Logger
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	if !cfg.LogPretty {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.Telemetry)
	if err != nil {
		utils.LogError(err, "OpenTelemetry setup failed, tracing disabled")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	// Initialize Database
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	loc := cfg.Location()
	tokens := utils.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)
	svcs := router.NewServices(db, tokens, func() time.Time { return time.Now().In(loc) })

	if cfg.BootstrapAdminEmail != "" {
		created, err := svcs.Auth.EnsureAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
		}
		if created {
			utils.LogInfo("Bootstrap admin account created", map[string]interface{}{"email": cfg.BootstrapAdminEmail})
		}
	}

	var loginLimiter gin.HandlerFunc
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		loginLimiter = middleware.NewRateLimiter(rdb, cfg.Redis.LoginRateLimit, cfg.Redis.LoginRateWindow, "login").Middleware()
		utils.LogInfo("Login rate limiting enabled", map[string]interface{}{
			"limit": cfg.Redis.LoginRateLimit, "window": cfg.Redis.LoginRateWindow.String(),
		})
	}

	engine, err := router.NewEngine(cfg.CORSAllowedOrigins, cfg.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create HTTP engine")
	}
	if err := router.Setup(engine, svcs, tokens, loginLimiter); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up routes")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(engine, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "timezone": loc.String()})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "HTTP server shutdown error")
	}
	utils.LogInfo("Server stopped")
}
