// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8001", cfg.GetServerAddr())
	assert.Equal(t, 65432, cfg.Robot.DefaultPort)
	assert.Equal(t, 5*time.Second, cfg.Robot.ConnectTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Robot.CommandCooldown)
	assert.Equal(t, 100*time.Millisecond, cfg.Robot.HealthCheckTimeout)
	assert.Equal(t, "robot-bridge", cfg.App.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ROBOT_BRIDGE_SERVER_PORT", "9000")
	t.Setenv("ROBOT_BRIDGE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddr())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidLevel(t *testing.T) {
	t.Setenv("ROBOT_BRIDGE_LOGGING_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("ROBOT_BRIDGE_APP_ENVIRONMENT", "local")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.environment")
}
