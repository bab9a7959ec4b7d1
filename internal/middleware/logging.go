package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"infinite-experiment/werewolf/internal/auth"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/logging"
)

// Logging writes one debug line per request with the gateway headers that identify the member.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(lw, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		logging.WithRequest(
			auth.GetRequestID(r.Context()),
			r.Header.Get(constants.HeaderGuildID),
			r.Header.Get(constants.HeaderUserID),
			endpoint,
		).Debugw("request served",
			"method", r.Method,
			"status", lw.statusCode,
			"channel", r.Header.Get(constants.HeaderChannelName),
			"duration", time.Since(start),
		)
	})
}
