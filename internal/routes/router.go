package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infinite-experiment/werewolf/internal/api"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/middleware"
)

// RegisterRoutes builds the chi router over already wired dependencies.
// gatherer backs the /metrics endpoint.
func RegisterRoutes(cfg *config.Config, deps *api.Dependencies, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://localhost:8081"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			constants.HeaderAPIKey, constants.HeaderGuildID, constants.HeaderUserID, constants.HeaderModerator,
			constants.HeaderChannelID, constants.HeaderChannelName, constants.HeaderCategoryID,
		},
		ExposedHeaders:   []string{constants.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", api.HealthCheckHandler(deps.SQLDB, deps.Redis, deps.Platform, upSince))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	RegisterAPIRoutes(r, deps, handlers, limiter, cfg.GatewayJWTSecret)

	logging.Info("Router initialized with metrics and logging middleware")
	return r
}
