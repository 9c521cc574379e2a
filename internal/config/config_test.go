package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noEnvFile keeps Load from picking up a developer's .env.
const noEnvFile = "testdata-missing.env"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DATABASE", "crm")

	cfg, err := Load(noEnvFile)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.ReportDefaultTimeout)
	assert.Equal(t, 600*time.Second, cfg.ReportHeavyTimeout)
	assert.Equal(t, 10*time.Minute, cfg.ReferenceCacheTTL)
	assert.Equal(t, uint64(50), cfg.MongoMaxPoolSize)
	assert.Empty(t, cfg.MTVDatabaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DATABASE", "crm")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REPORT_DEFAULT_TIMEOUT", "90")
	t.Setenv("REPORT_HEAVY_TIMEOUT", "5m")

	cfg, err := Load(noEnvFile)
	require.NoError(t, err)
	assert.False(t, cfg.Development())
	assert.Equal(t, 90*time.Second, cfg.ReportDefaultTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ReportHeavyTimeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DATABASE", "")
	t.Setenv("REFERENCE_CACHE_TTL", "soon")

	_, err := Load(noEnvFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI is required")
	assert.Contains(t, err.Error(), "MONGO_DATABASE is required")
	assert.Contains(t, err.Error(), "REFERENCE_CACHE_TTL")
}

func TestLoad_HeavyShorterThanDefault(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DATABASE", "crm")
	t.Setenv("REPORT_DEFAULT_TIMEOUT", "120")
	t.Setenv("REPORT_HEAVY_TIMEOUT", "60")

	_, err := Load(noEnvFile)
	assert.ErrorContains(t, err, "REPORT_HEAVY_TIMEOUT")
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MONGO_URI=mongodb://file:27017\nMONGO_DATABASE=fromfile\n"), 0o600))
	// godotenv never overrides variables that are already set.
	t.Setenv("MONGO_DATABASE", "fromenv")
	t.Setenv("MONGO_URI", "")
	require.NoError(t, os.Unsetenv("MONGO_URI"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://file:27017", cfg.MongoURI)
	assert.Equal(t, "fromenv", cfg.MongoDatabase)
}
