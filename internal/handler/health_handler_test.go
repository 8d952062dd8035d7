// internal/handler/health_handler_test.go
package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"robot-bridge/internal/config"
	"robot-bridge/internal/session"
)

func newHealthRouter(t *testing.T) (*gin.Engine, *session.Registry) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Robot: config.RobotConfig{
			DefaultPort:        65432,
			ConnectTimeout:     time.Second,
			CommandCooldown:    100 * time.Millisecond,
			HealthCheckTimeout: 100 * time.Millisecond,
		},
		App: config.AppConfig{
			Name:    "robot-bridge",
			Version: "1.0.0",
		},
	}

	registry := session.NewRegistry(&cfg.Robot, zap.NewNop())
	h := NewHealthHandler(registry, cfg, zap.NewNop())

	router := gin.New()
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
	router.GET("/api/", h.Hello)

	return router, registry
}

func TestHelloEndpoint(t *testing.T) {
	router, _ := newHealthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Hello World"}`, w.Body.String())
}

func TestHealthCheckReportsSessions(t *testing.T) {
	router, registry := newHealthRouter(t)

	_, err := registry.Connect(newScriptedChannel(), "192.168.1.100")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "robot-bridge", health.Service)
	assert.Equal(t, "1.0.0", health.Version)

	sessions, ok := health.Checks["sessions"]
	require.True(t, ok)
	assert.Equal(t, float64(1), sessions.Data["active_sessions"])
}

func TestProbeEndpoints(t *testing.T) {
	router, _ := newHealthRouter(t)

	for path, status := range map[string]string{
		"/ready": "ready",
		"/live":  "alive",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, status, body["status"], path)
	}
}
