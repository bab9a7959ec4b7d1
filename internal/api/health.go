package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/werewolf/internal/models/entities"
	"infinite-experiment/werewolf/internal/providers"
)

// HealthCheckHandler handles GET /health
//
// Reports the database, redis when configured and the chat platform when it can be
// pinged. Responds 503 when any is down.
func HealthCheckHandler(db *sqlx.DB, redisClient *redis.Client, platform providers.ChatPlatform, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := entities.NewHealthCheckResponse(upSince)

		resp.Add("database", checkDependency(r.Context(), "Database Connected", db.PingContext))

		if redisClient != nil {
			resp.Add("redis", checkDependency(r.Context(), "Redis Connected", func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}))
		}

		if pinger, ok := platform.(providers.Pinger); ok {
			resp.Add("chat_platform", checkDependency(r.Context(), "Discord API reachable", pinger.Ping))
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != entities.HealthOK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func checkDependency(ctx context.Context, okDetails string, ping func(context.Context) error) entities.ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	return entities.NewServiceStatus(err, okDetails, time.Since(start))
}
