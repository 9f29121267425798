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

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.TaskAdminAll)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("POLICY_TASK_ADMIN_ALL", "true")
	t.Setenv("DB_NAME", "interntrack_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.TaskAdminAll)
	assert.Equal(t, "interntrack_test", cfg.Database.Name)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "-1")

	_, err := Load()
	assert.Error(t, err)
}
