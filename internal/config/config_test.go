package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAX_DAILY_REQUESTS", "")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRUST_PROXY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5001", cfg.HTTPAddr)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, 3, cfg.MaxDailyRequests)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Empty(t, cfg.Palette)
}

func TestLoadRequiresJWTSecretWithDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/calendar")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	assert.EqualError(t, err, "missing env: JWT_SECRET")
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_DAILY_REQUESTS", "three")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.yaml")
	body := "max_daily_requests: 5\nmodel_timeout: 30s\npalette: [\"#000000\", \"#ffffff\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAX_DAILY_REQUESTS", "2")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxDailyRequests)
	assert.Equal(t, 30*time.Second, cfg.ModelTimeout)
	assert.Equal(t, []string{"#000000", "#ffffff"}, cfg.Palette)
}
