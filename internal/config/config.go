package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the migrator.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Freshdesk FreshdeskConfig
	Zendesk   ZendeskConfig
	HTTP      HTTPClientConfig
	Mapping   MappingConfig
}

// AppConfig controls the control API server.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds the migration ledger connection values.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
	ApplicationName string
}

// RedisConfig holds the Source response cache connection values.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	TTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
	Output string
}

// AuthConfig defines operator token parameters for the control API.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// FreshdeskConfig points at the Source helpdesk.
type FreshdeskConfig struct {
	Company  string
	BaseURL  string
	Username string
	Password string
	CacheDir string
}

// ZendeskConfig points at the Target helpdesk.
type ZendeskConfig struct {
	Company  string
	BaseURL  string
	Username string
	Password string
}

// HTTPClientConfig tunes the helpdesk transport.
type HTTPClientConfig struct {
	TimeoutSeconds int
	MaxRetries     int
}

// MappingConfig locates the field mapping tables.
type MappingConfig struct {
	Path string
}

// Load reads configuration from environment variables, applying defaults
// where possible, and validates that both helpdesks are addressable.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for commands that never reach a helpdesk.
func Read() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "freshdesk-migrator"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ApplicationName: getEnv("POSTGRES_APPLICATION_NAME", "freshdesk-migrator"),
		},
		Redis: RedisConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			KeyPrefix:  getEnv("REDIS_KEY_PREFIX", "freshdesk:"),
			TTLSeconds: getEnvAsInt("REDIS_TTL_SECONDS", 0),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Freshdesk: FreshdeskConfig{
			Company:  os.Getenv("FRESHDESK_COMPANY"),
			BaseURL:  os.Getenv("FRESHDESK_BASE_URL"),
			Username: os.Getenv("FRESHDESK_USERNAME"),
			Password: os.Getenv("FRESHDESK_PASSWORD"),
			CacheDir: os.Getenv("FRESHDESK_CACHE_DIR"),
		},
		Zendesk: ZendeskConfig{
			Company:  os.Getenv("ZENDESK_COMPANY"),
			BaseURL:  os.Getenv("ZENDESK_BASE_URL"),
			Username: os.Getenv("ZENDESK_USERNAME"),
			Password: os.Getenv("ZENDESK_PASSWORD"),
		},
		HTTP: HTTPClientConfig{
			TimeoutSeconds: getEnvAsInt("HELPDESK_HTTP_TIMEOUT_SECONDS", 30),
			MaxRetries:     getEnvAsInt("HELPDESK_HTTP_MAX_RETRIES", 3),
		},
		Mapping: MappingConfig{
			Path: getEnv("MAPPING_FILE", "mapping.yaml"),
		},
	}
	return cfg, nil
}

// Validate checks that both helpdesks are addressable.
func (c *Config) Validate() error {
	var missing []string
	if c.Freshdesk.Company == "" && c.Freshdesk.BaseURL == "" {
		missing = append(missing, "FRESHDESK_COMPANY")
	}
	if c.Zendesk.Company == "" && c.Zendesk.BaseURL == "" {
		missing = append(missing, "ZENDESK_COMPANY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns how long cached Source responses live; zero means forever.
func (r RedisConfig) TTL() time.Duration {
	if r.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.TTLSeconds) * time.Second
}

// APIBaseURL returns the Freshdesk base URL, derived from the company when not overridden.
func (f FreshdeskConfig) APIBaseURL() string {
	if f.BaseURL != "" {
		return strings.TrimRight(f.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.freshdesk.com", f.Company)
}

// APIBaseURL returns the Zendesk base URL, derived from the company when not overridden.
func (z ZendeskConfig) APIBaseURL() string {
	if z.BaseURL != "" {
		return strings.TrimRight(z.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.zendesk.com", z.Company)
}

// Timeout returns the per-request helpdesk timeout.
func (h HTTPClientConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
