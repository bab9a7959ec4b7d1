package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"infinite-experiment/werewolf/internal/auth"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db/repositories"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
	"infinite-experiment/werewolf/internal/models/entities"
)

const testSecret = "gateway-secret"

type fakeKeys map[string]bool

func (f fakeKeys) GetStatus(_ context.Context, key string) (*entities.ApiKey, error) {
	if key == "boom" {
		return nil, errors.New("db down")
	}
	status, ok := f[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &entities.ApiKey{ID: 1, Status: status}, nil
}

func init() {
	logging.SetLogger(zap.NewNop().Sugar())
}

// claimsEcho replies with the authenticated member so tests can see what the middleware stored.
func claimsEcho(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	w.Header().Set("X-Claims", string(claims.Source())+"|"+claims.GuildID()+"|"+claims.UserID())
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware(fakeKeys{"1": true, "2": false}, testSecret)(http.HandlerFunc(claimsEcho))

	token, err := auth.IssueGatewayToken(testSecret, "9000", "1001", true, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		claims  string
	}{
		{
			name:    "bearer token",
			headers: map[string]string{"Authorization": "Bearer " + token},
			status:  http.StatusNoContent,
			claims:  "GATEWAY|9000|1001",
		},
		{
			name:    "bad bearer token",
			headers: map[string]string{"Authorization": "Bearer nope"},
			status:  http.StatusUnauthorized,
		},
		{
			name: "api key",
			headers: map[string]string{
				constants.HeaderAPIKey:  "1",
				constants.HeaderGuildID: "9000",
				constants.HeaderUserID:  "1002",
			},
			status: http.StatusNoContent,
			claims: "API|9000|1002",
		},
		{
			name:    "api key without member headers",
			headers: map[string]string{constants.HeaderAPIKey: "1"},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "inactive api key",
			headers: map[string]string{constants.HeaderAPIKey: "2", constants.HeaderGuildID: "9000", constants.HeaderUserID: "1"},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "unknown api key",
			headers: map[string]string{constants.HeaderAPIKey: "3"},
			status:  http.StatusUnauthorized,
		},
		{
			name:    "key store failure",
			headers: map[string]string{constants.HeaderAPIKey: "boom"},
			status:  http.StatusInternalServerError,
		},
		{
			name:   "no credentials",
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/games/info", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.claims, rec.Header().Get("X-Claims"))
		})
	}
}

func TestIsModeratorMiddleware(t *testing.T) {
	handler := IsModeratorMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(claims auth.UserClaims) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if claims != nil {
			req = req.WithContext(auth.SetUserClaims(req.Context(), claims))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(&auth.APIKeyClaims{ModeratorMember: true}))
	assert.Equal(t, http.StatusForbidden, serve(&auth.APIKeyClaims{}))
	assert.Equal(t, http.StatusForbidden, serve(nil))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(guild string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.SetUserClaims(req.Context(), &auth.APIKeyClaims{DiscordGuildID: guild}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve("a"))
	assert.Equal(t, http.StatusNoContent, serve("a"))
	assert.Equal(t, http.StatusTooManyRequests, serve("a"))
	assert.Equal(t, http.StatusNoContent, serve("b"), "guilds have separate buckets")
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(constants.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.HeaderRequestID, "abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", seen)
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Get("/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/games/42", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("/games/{id}", http.MethodGet, "418")))
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/v1/games/{id}/info", NormalizeEndpoint("/api/v1/games/12/info"))
	assert.Equal(t, "/x/{id}", NormalizeEndpoint("/x/1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	assert.Equal(t, "/health", NormalizeEndpoint("/health"))
}
