package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"rally-metrics-go/database"
	"rally-metrics-go/logging"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

const defaultPrefsSecret = "rally-metrics-dev-secret"

// Summary store backends
const (
	SummaryStoreMemory = "memory"
	SummaryStoreMongo  = "mongo"
	SummaryStoreSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	API      APIConfig      `json:"api"`
	Cache    CacheConfig    `json:"cache"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Auth     AuthConfig     `json:"auth"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string   `json:"port"`
	Host        string   `json:"host"`
	BehindProxy bool     `json:"behind_proxy"`
	Environment string   `json:"environment"`
	CORSOrigins []string `json:"cors_origins"`
}

// APIConfig points at the stats backend
type APIConfig struct {
	BaseURL  string        `json:"base_url"`
	Timeout  time.Duration `json:"timeout"`
	DemoMode bool          `json:"demo_mode"`
}

// CacheConfig holds list and summary cache settings
type CacheConfig struct {
	TTL          time.Duration `json:"ttl"`
	RedisURL     string        `json:"redis_url"`
	SummaryStore string        `json:"summary_store"`
	SummaryTTL   time.Duration `json:"summary_ttl"`
	SQLitePath   string        `json:"sqlite_path"`
	WarmInterval time.Duration `json:"warm_interval"`
}

// DatabaseConfig holds MongoDB configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// AuthConfig holds cookie signing and admin credentials
type AuthConfig struct {
	PrefsSecret       string `json:"prefs_secret"`
	AdminUser         string `json:"admin_user"`
	AdminPasswordHash string `json:"admin_password_hash"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Don't treat missing .env as an error
		logging.Debugf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			BehindProxy: getBoolEnv("BEHIND_PROXY", false),
			Environment: environment,
			CORSOrigins: getListEnv("CORS_ORIGINS", nil),
		},
		API: APIConfig{
			BaseURL:  strings.TrimRight(getEnv("RALLY_API_BASE_URL", "http://localhost:8081"), "/"),
			Timeout:  getDurationEnv("RALLY_API_TIMEOUT", 10*time.Second),
			DemoMode: getBoolEnv("DEMO_MODE", false),
		},
		Cache: CacheConfig{
			TTL:          getDurationEnv("CACHE_TTL", 5*time.Minute),
			RedisURL:     getEnv("REDIS_URL", ""),
			SummaryStore: strings.ToLower(getEnv("SUMMARY_STORE", SummaryStoreMemory)),
			SummaryTTL:   getDurationEnv("SUMMARY_TTL", 24*time.Hour),
			SQLitePath:   getEnv("SQLITE_PATH", "rally-metrics.db"),
			WarmInterval: getDurationEnv("WARM_INTERVAL", 24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "rally_metrics"),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", ""),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Auth: AuthConfig{
			PrefsSecret:       getEnv("PREFS_SECRET", defaultPrefsSecret),
			AdminUser:         getEnv("ADMIN_USER", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// IsDevelopment reports whether ENVIRONMENT is development
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port must be numeric, got %q", c.Server.Port)
	}

	if !c.API.DemoMode {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("RALLY_API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("RALLY_API_TIMEOUT must be positive")
	}

	switch c.Cache.SummaryStore {
	case SummaryStoreMemory:
	case SummaryStoreMongo:
		if c.Database.Host == "" || c.Database.Port == "" || c.Database.Database == "" {
			return fmt.Errorf("DB_HOST, DB_PORT and DB_NAME are required when SUMMARY_STORE=mongo")
		}
	case SummaryStoreSQLite:
		if c.Cache.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when SUMMARY_STORE=sqlite")
		}
	default:
		return fmt.Errorf("SUMMARY_STORE must be memory, mongo or sqlite, got %q", c.Cache.SummaryStore)
	}

	if c.Auth.PrefsSecret == "" {
		return fmt.Errorf("PREFS_SECRET is required")
	}
	if c.Auth.PrefsSecret == defaultPrefsSecret && !c.IsDevelopment() {
		return fmt.Errorf("PREFS_SECRET must be changed in production")
	}

	return nil
}

// IsAdminEnabled returns true if the purge endpoint has credentials
func (c *Config) IsAdminEnabled() bool {
	return c.Auth.AdminUser != "" && c.Auth.AdminPasswordHash != ""
}

// MongoConfig returns the connection settings for the summary store
func (c *Config) MongoConfig() database.Config {
	return database.Config(c.Database)
}

// LoggerConfig returns logger settings writing to out. Colour is only
// enabled when out is a terminal.
func (c *Config) LoggerConfig(out *os.File) logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Output:      out,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor && isatty.IsTerminal(out.Fd()),
	}
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Behind Proxy: %t, Environment: %s, CORS: %v)",
		c.GetServerAddress(), c.Server.BehindProxy, c.Server.Environment, c.Server.CORSOrigins)
	logging.Infof("API: %s (Timeout: %v, Demo: %t)", c.API.BaseURL, c.API.Timeout, c.API.DemoMode)
	logging.Infof("Cache: TTL=%v, Redis=%t, SummaryStore=%s, SummaryTTL=%v, WarmInterval=%v",
		c.Cache.TTL, c.Cache.RedisURL != "", c.Cache.SummaryStore, c.Cache.SummaryTTL, c.Cache.WarmInterval)
	if c.Cache.SummaryStore == SummaryStoreMongo {
		logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t)",
			c.Database.Host, c.Database.Port, c.Database.Database,
			c.Database.Username, c.Database.Password != "")
	}
	logging.Infof("Logging: Level=%s, Prefix=%s, Color=%t",
		c.Logging.Level, c.Logging.Prefix, c.Logging.EnableColor)
	logging.Infof("Admin: Enabled=%t", c.IsAdminEnabled())
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
