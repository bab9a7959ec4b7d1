package middleware

import (
	"net/http"
	"time"

	"infinite-experiment/werewolf/internal/auth"
	"infinite-experiment/werewolf/internal/common"
)

// IsModeratorMiddleware lets through members the gateway vouched for as game moderators.
func IsModeratorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())

			if claims == nil || !claims.IsModerator() {
				common.RespondError(w, time.Now(), nil, "Forbidden. Need game moderator role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
