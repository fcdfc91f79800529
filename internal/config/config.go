package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config is read once at startup and passed down explicitly.
type Config struct {
	Env       string `env:"ENV" env-default:"local"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	HTTP      HTTPConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Tasks     TasksConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8008"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres".
	Driver       string `env:"DB_DRIVER" env-default:"sqlite"`
	DSN          string `env:"DB_DSN" env-default:"task-tracker.db"`
	LogLevel     string `env:"DB_LOG_LEVEL" env-default:"warn"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
}

type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET" env-default:"development-insecure-secret-change-me"`
	Issuer   string        `env:"JWT_ISSUER" env-default:"task-tracker-api"`
	Audience string        `env:"JWT_AUDIENCE" env-default:"task-tracker-clients"`
	TTL      time.Duration `env:"JWT_TTL" env-default:"24h"`
}

type AuthConfig struct {
	// PasswordHasher is either "bcrypt" or "argon2id".
	PasswordHasher string `env:"PASSWORD_HASHER" env-default:"bcrypt"`
}

type TasksConfig struct {
	RejectDependencyCycles bool `env:"DEPENDENCY_REJECT_CYCLES" env-default:"false"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `env:"RATE_LIMIT_RPS" env-default:"5"`
	Burst             int           `env:"RATE_LIMIT_BURST" env-default:"10"`
	IdleTTL           time.Duration `env:"RATE_LIMIT_IDLE_TTL" env-default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Read loads the configuration from the process environment.
func Read() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Auth.PasswordHasher) {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, c.HTTP.Port)
}
