package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ADDR", "PORT", "DATABASE_URL", "LOBBY_GRACE", "LOG_DEV"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.LobbyGrace)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOBBY_GRACE", "30s")
	t.Setenv("DATABASE_URL", "postgres://localhost/imposter")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.LobbyGrace)
	assert.Equal(t, "postgres://localhost/imposter", cfg.DatabaseURL)
	assert.True(t, cfg.DevLog)
}

func TestAddrBeatsPort(t *testing.T) {
	t.Setenv("ADDR", "127.0.0.1:3000")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr)
}

func TestBadGraceDuration(t *testing.T) {
	t.Setenv("LOBBY_GRACE", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
