package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DefaultJWTSecret is only acceptable outside production.
	DefaultJWTSecret = "dev-secret"
)

// Backend identifies which store implementation a database URL selects.
type Backend string

const (
	BackendMongo    Backend = "mongo"
	BackendPostgres Backend = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Logger    LoggerConfig    `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `yaml:"name"`
	Env                   string `yaml:"env"`
	Host                  string `yaml:"host"`
	Port                  string `yaml:"port"`
	Version               string `yaml:"version"`
	CORSOrigin            string `yaml:"cors_origin"`
	ClientBuildDir        string `yaml:"client_build_dir"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// DatabaseConfig holds document/relational store connection values.
type DatabaseConfig struct {
	URL                   string `yaml:"url"`
	Name                  string `yaml:"name"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	MaxConns              int32  `yaml:"max_conns"`
	MinConns              int32  `yaml:"min_conns"`
	RunMigrations         bool   `yaml:"run_migrations"`
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	TokenTTLMinutes   int    `yaml:"token_ttl_minutes"`
	BcryptCost        int    `yaml:"bcrypt_cost"`
	MinPasswordLength int    `yaml:"min_password_length"`
	CookieName        string `yaml:"cookie_name"`
}

// RateLimitConfig bounds register/login attempts per client.
type RateLimitConfig struct {
	Max           int `yaml:"max"`
	WindowMinutes int `yaml:"window_minutes"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:                  "job-tracker",
			Env:                   EnvDevelopment,
			Host:                  "0.0.0.0",
			Port:                  "4000",
			Version:               "dev",
			CORSOrigin:            "http://localhost:3000",
			ClientBuildDir:        "client/build",
			RequestTimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Name:                  "jobify",
			ConnectTimeoutSeconds: 10,
			MaxConns:              10,
			MinConns:              2,
			RunMigrations:         true,
		},
		Logger: LoggerConfig{Level: "info"},
		Auth: AuthConfig{
			JWTSecret:         DefaultJWTSecret,
			TokenTTLMinutes:   24 * 60,
			BcryptCost:        10,
			MinPasswordLength: 6,
			CookieName:        "token",
		},
		RateLimit: RateLimitConfig{Max: 10, WindowMinutes: 15},
	}
}

// Load reads configuration from defaults, an optional YAML file named by APP_CONFIG_FILE,
// then environment variables (with .env honored), in that order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", strconv.Itoa(c.Redis.DB)))
	if err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.Env = strings.ToLower(getEnv("APP_ENV", getEnv("NODE_ENV", c.App.Env)))
	c.App.Host = getEnv("APP_HOST", c.App.Host)
	c.App.Port = getEnv("PORT", getEnv("APP_PORT", c.App.Port))
	c.App.Version = getEnv("APP_VERSION", c.App.Version)
	c.App.CORSOrigin = getEnv("CORS_ORIGIN", getEnv("PRODUCTION_URL", c.App.CORSOrigin))
	c.App.ClientBuildDir = getEnv("CLIENT_BUILD_DIR", c.App.ClientBuildDir)
	c.App.RequestTimeoutSeconds = getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", c.App.RequestTimeoutSeconds)

	c.Database.URL = getEnv("DATABASE_URL", getEnv("MONGO_URL", c.Database.URL))
	c.Database.Name = getEnv("DATABASE_NAME", c.Database.Name)
	c.Database.ConnectTimeoutSeconds = getEnvAsInt("DB_CONNECT_TIMEOUT_SECONDS", c.Database.ConnectTimeoutSeconds)
	c.Database.MaxConns = int32(getEnvAsInt("POSTGRES_MAX_CONNS", int(c.Database.MaxConns)))
	c.Database.MinConns = int32(getEnvAsInt("POSTGRES_MIN_CONNS", int(c.Database.MinConns)))
	c.Database.RunMigrations = getEnvAsBool("DB_RUN_MIGRATIONS", c.Database.RunMigrations)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = redisDB

	c.Logger.Level = getEnv("LOG_LEVEL", c.Logger.Level)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTLMinutes = getEnvAsInt("JWT_LIFETIME_MINUTES", c.Auth.TokenTTLMinutes)
	c.Auth.BcryptCost = getEnvAsInt("AUTH_BCRYPT_COST", c.Auth.BcryptCost)

	c.RateLimit.Max = getEnvAsInt("AUTH_RATE_LIMIT_MAX", c.RateLimit.Max)
	c.RateLimit.WindowMinutes = getEnvAsInt("AUTH_RATE_LIMIT_WINDOW_MINUTES", c.RateLimit.WindowMinutes)
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if _, err := c.Database.Backend(); err != nil {
		return err
	}
	if c.App.Env != EnvDevelopment && c.App.Env != EnvProduction {
		return fmt.Errorf("unknown APP_ENV %q", c.App.Env)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("JWT_LIFETIME_MINUTES must be positive")
	}
	return nil
}

// IsProduction reports whether production behavior is enabled.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
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

// Backend derives the store implementation from the URL scheme.
func (d DatabaseConfig) Backend() (Backend, error) {
	switch {
	case strings.HasPrefix(d.URL, "mongodb://"), strings.HasPrefix(d.URL, "mongodb+srv://"):
		return BackendMongo, nil
	case strings.HasPrefix(d.URL, "postgres://"), strings.HasPrefix(d.URL, "postgresql://"):
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database url scheme in %q", redactURL(d.URL))
	}
}

// ConnectTimeout returns the bound for the startup connect and ping.
func (d DatabaseConfig) ConnectTimeout() time.Duration {
	if d.ConnectTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.ConnectTimeoutSeconds) * time.Second
}

// TokenTTL returns the session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// Window returns the rate limit window.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

func redactURL(raw string) string {
	if i := strings.Index(raw, "://"); i >= 0 {
		return raw[:i+3] + "..."
	}
	if len(raw) > 8 {
		return raw[:8] + "..."
	}
	return raw
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
