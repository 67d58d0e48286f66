package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The session key is the one setting without a default, so every test
// that expects a valid configuration has to provide it.
const testSigningKey = "MDEyMzQ1Njc4OWFiY2RlZg=="

func TestNew(t *testing.T) {
	t.Run("defaults apply when only the session key is set", func(t *testing.T) {
		t.Setenv("TINYAPP_SESSION_KEY", testSigningKey)

		cfg, err := New(WithDisableFlagsParsing(true))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.RunAddr)
		assert.Equal(t, "http://localhost:8080", cfg.ShortURLBase)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "tinyapp_session", cfg.SessionCookieName)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, testSigningKey, cfg.SessionSigningKey)
	})

	t.Run("environment overrides the defaults", func(t *testing.T) {
		t.Setenv("TINYAPP_SESSION_KEY", testSigningKey)
		t.Setenv("SERVER_ADDRESS", ":9090")
		t.Setenv("BASE_URL", "https://tiny.example.com")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("SESSION_COOKIE_NAME", "sid")
		t.Setenv("SESSION_TTL", "1h")

		cfg, err := New(WithDisableFlagsParsing(true))
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.RunAddr)
		assert.Equal(t, "https://tiny.example.com", cfg.ShortURLBase)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "sid", cfg.SessionCookieName)
		assert.Equal(t, time.Hour, cfg.SessionTTL)
	})

	t.Run("missing session key fails startup", func(t *testing.T) {
		t.Setenv("TINYAPP_SESSION_KEY", "")

		_, err := New(WithDisableFlagsParsing(true))
		assert.Error(t, err)
	})

	t.Run("session key must be base64url", func(t *testing.T) {
		t.Setenv("TINYAPP_SESSION_KEY", "not base64!")

		_, err := New(WithDisableFlagsParsing(true))
		assert.Error(t, err)
	})

	t.Run("unknown log level is rejected", func(t *testing.T) {
		t.Setenv("TINYAPP_SESSION_KEY", testSigningKey)
		t.Setenv("LOG_LEVEL", "loud")

		_, err := New(WithDisableFlagsParsing(true))
		assert.Error(t, err)
	})
}
