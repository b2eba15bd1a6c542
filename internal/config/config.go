package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Crypto   CryptoConfig
	Tiny     TinyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for operator sessions.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// CryptoConfig carries the key used to encrypt ERP credentials at rest.
// KeyHex must decode to 32 bytes (AES-256).
type CryptoConfig struct {
	KeyHex string
}

// TinyConfig describes the external ERP endpoints and OAuth client values.
type TinyConfig struct {
	LegacyBaseURL     string
	APIBaseURL        string
	AuthBaseURL       string
	ClientID          string
	ClientSecret      string
	RedirectURI       string
	LegacyTokenEnv    string // static legacy token fallback, env only
	DryRunDefault     bool
	CallTimeoutSec    int
	AccessTokenTTLMin int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "expedition-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Crypto: CryptoConfig{
			KeyHex: os.Getenv("CRYPTO_KEY"),
		},
		Tiny: TinyConfig{
			LegacyBaseURL:     getEnv("TINY_LEGACY_BASE_URL", "https://api.tiny.com.br/api2"),
			APIBaseURL:        getEnv("TINY_API_BASE_URL", "https://api.tiny.com.br/public-api/v3"),
			AuthBaseURL:       getEnv("TINY_AUTH_BASE_URL", "https://accounts.tiny.com.br/realms/tiny/protocol/openid-connect"),
			ClientID:          os.Getenv("TINY_CLIENT_ID"),
			ClientSecret:      os.Getenv("TINY_CLIENT_SECRET"),
			RedirectURI:       os.Getenv("TINY_REDIRECT_URI"),
			LegacyTokenEnv:    os.Getenv("TINY_API_TOKEN"),
			DryRunDefault:     getEnvAsBool("TINY_DRY_RUN_DEFAULT", true),
			CallTimeoutSec:    getEnvAsInt("TINY_CALL_TIMEOUT_SECONDS", 15),
			AccessTokenTTLMin: getEnvAsInt("TINY_ACCESS_TOKEN_TTL_MINUTES", 55),
		},
	}

	return cfg, nil
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

// CallTimeout returns the outbound ERP call timeout.
func (t TinyConfig) CallTimeout() time.Duration {
	if t.CallTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(t.CallTimeoutSec) * time.Second
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
