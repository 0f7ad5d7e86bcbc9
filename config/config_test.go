package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SERVER_HOST", "SERVER_PORT", "ENVIRONMENT", "BEHIND_PROXY", "RALLY_API_BASE_URL",
		"RALLY_API_TIMEOUT", "DEMO_MODE", "CACHE_TTL", "REDIS_URL", "SUMMARY_STORE",
		"SUMMARY_TTL", "SQLITE_PATH", "PREFS_SECRET", "ADMIN_USER", "ADMIN_PASSWORD_HASH",
		"CORS_ORIGINS", "WARM_INTERVAL", "DB_HOST", "DB_PORT", "DB_NAME",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.GetServerAddress())
	require.Equal(t, "http://localhost:8081", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, SummaryStoreMemory, cfg.Cache.SummaryStore)
	require.Equal(t, 24*time.Hour, cfg.Cache.WarmInterval)
	require.True(t, cfg.IsDevelopment())
	require.False(t, cfg.IsAdminEnabled())
	require.Nil(t, cfg.Server.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RALLY_API_BASE_URL", "https://stats.example.com/")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("SUMMARY_STORE", "SQLite")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("DEMO_MODE", "yes")
	t.Setenv("RALLY_API_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://stats.example.com", cfg.API.BaseURL)
	require.Equal(t, 90*time.Second, cfg.Cache.TTL)
	require.Equal(t, SummaryStoreSQLite, cfg.Cache.SummaryStore)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	require.True(t, cfg.API.DemoMode)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	t.Setenv("SUMMARY_STORE", "postgres")
	_, err := Load()
	require.ErrorContains(t, err, "SUMMARY_STORE")

	t.Setenv("SUMMARY_STORE", "")
	t.Setenv("RALLY_API_BASE_URL", "stats-host")
	_, err = Load()
	require.ErrorContains(t, err, "RALLY_API_BASE_URL")

	t.Setenv("RALLY_API_BASE_URL", "")
	t.Setenv("ENVIRONMENT", "production")
	_, err = Load()
	require.ErrorContains(t, err, "PREFS_SECRET")

	t.Setenv("PREFS_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.IsDevelopment())
}

func TestDerivedConfigs(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Host: "db", Port: "27017", Database: "rally", Username: "u", Password: "p"},
		Logging:  LoggingConfig{Level: "debug", Prefix: "rally", EnableColor: true},
	}
	db := cfg.MongoConfig()
	require.Equal(t, "db", db.Host)
	require.Equal(t, "rally", db.Database)
	require.Equal(t, "u", db.Username)

	out, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer out.Close()

	lc := cfg.LoggerConfig(out)
	require.Equal(t, "debug", lc.Level)
	require.Equal(t, "rally", lc.Prefix)
	require.Equal(t, out, lc.Output)
	require.False(t, lc.EnableColor, "colour needs a terminal")
}
