package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"infinite-experiment/werewolf/internal/api"
	"infinite-experiment/werewolf/internal/auth"
	"infinite-experiment/werewolf/internal/common"
	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/db"
	"infinite-experiment/werewolf/internal/logging"
	"infinite-experiment/werewolf/internal/metrics"
)

const testSecret = "router-test-secret"

type apiBody struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logging.SetLogger(zap.NewNop().Sugar())

	gormDB, err := db.InitSQLiteORM(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.WrapGorm(gormDB, "sqlite3")
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	deps := api.NewDependencies(
		config.DefaultGameConfig(),
		gormDB,
		sqlDB,
		nil, // no command below reaches the chat platform
		common.NewCacheService(time.Minute, time.Minute),
		common.NewLocalGameLocker(),
		metrics.NewMetricsRegistry(registry),
	)
	t.Cleanup(func() { _ = deps.Close() })

	cfg := &config.Config{
		GatewayJWTSecret:   testSecret,
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
	return RegisterRoutes(cfg, deps, registry, time.Now())
}

func token(t *testing.T, moderator bool) string {
	t.Helper()
	tok, err := auth.IssueGatewayToken(testSecret, "9000", "10001", moderator, time.Minute)
	require.NoError(t, err)
	return tok
}

func call(t *testing.T, h http.Handler, method, path, bearer, channelName, body string) (*httptest.ResponseRecorder, apiBody) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if channelName != "" {
		req.Header.Set(constants.HeaderChannelName, channelName)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var parsed apiBody
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body["services"], "database")
	assert.NotEmpty(t, rec.Header().Get(constants.HeaderRequestID))
}

func TestCommandsRequireAuth(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := call(t, h, http.MethodGet, "/api/v1/scenarios", "", "testing", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = call(t, h, http.MethodGet, "/api/v1/scenarios", token(t, false), "testing", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScenarioCreateAndList(t *testing.T) {
	h := newTestRouter(t)
	mod := token(t, true)

	rec, body := call(t, h, http.MethodPost, "/api/v1/scenarios", mod, "testing", `{"name":"weekend","scope":"global"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ok", body.Status)
	assert.Contains(t, body.Message, "weekend")

	rec, body = call(t, h, http.MethodGet, "/api/v1/scenarios", mod, "testing", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(body.Data), `"name":"weekend"`)

	rec, body = call(t, h, http.MethodPost, "/api/v1/scenarios", mod, "testing", `{"name":"weekend","scope":"global"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "rejected", body.Status)
	assert.Equal(t, constants.MsgScenarioTaken, body.Message)
}

func TestMalformedBody(t *testing.T) {
	h := newTestRouter(t)

	rec, body := call(t, h, http.MethodPost, "/api/v1/scenarios", token(t, true), "testing", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", body.Status)
}

func TestGameCommandOutsideGameIsRejected(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/current", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, true))
	req.Header.Set(constants.HeaderChannelName, "moderator")
	req.Header.Set(constants.HeaderCategoryID, "no-such-category")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body apiBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rejected", body.Status)
	assert.Equal(t, constants.MsgNoGame, body.Message)
	assert.Contains(t, string(body.Data), `"reason":"no_game"`)
}

func TestReactionHandledInlineWithoutQueue(t *testing.T) {
	h := newTestRouter(t)

	rec, body := call(t, h, http.MethodPost, "/api/v1/reactions", token(t, false), "",
		`{"message_id":"555","user_id":"10001","emoji":"🐺","added":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(body.Data), `"reason":"ignored"`)

	rec, _ = call(t, h, http.MethodPost, "/api/v1/reactions", token(t, false), "", `{"emoji":"🐺"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)
	call(t, h, http.MethodGet, "/api/v1/scenarios", token(t, true), "testing", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `werewolf_commands_total{command="scenario-list-available",outcome="ok"} 1`)
}
