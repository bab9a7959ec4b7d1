package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"infinite-experiment/werewolf/internal/auth"
	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/models/entities"
)

// APIKeyChecker is the part of the keys repository the middleware needs.
type APIKeyChecker interface {
	GetStatus(ctx context.Context, key string) (*entities.ApiKey, error)
}

// AuthMiddleware accepts either a gateway-signed bearer token or an API key plus
// member headers, and stores the resulting claims on the request context.
func AuthMiddleware(keysRepo APIKeyChecker, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get(constants.HeaderAPIKey)

			var claims auth.UserClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				gatewayClaims, err := auth.ParseGatewayToken(jwtSecret, strings.TrimPrefix(authHeader, "Bearer "))
				if err != nil {
					logging.Warn("rejected gateway token", "error", err)
					common.RespondError(w, start, nil, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}
				claims = gatewayClaims

			case apiKey != "":
				keyRes, err := keysRepo.GetStatus(r.Context(), apiKey)
				if errors.Is(err, repositories.ErrNotFound) {
					common.RespondError(w, start, nil, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}
				if err != nil {
					logging.Error("api key lookup failed", "error", err)
					common.RespondError(w, start, nil, "Internal Server Error")
					return
				}
				if !keyRes.Status {
					common.RespondError(w, start, nil, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
					return
				}

				apiClaims := auth.MakeClaimsFromAPI(r)
				if apiClaims.GuildID() == "" || apiClaims.UserID() == "" {
					common.RespondError(w, start, nil, "Unauthorized. Missing guild or user header", http.StatusUnauthorized)
					return
				}
				claims = apiClaims

			default:
				common.RespondError(w, start, nil, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
