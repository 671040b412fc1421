package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT, default=8080"`
	GinMode  string `env:"GIN_MODE, default=debug"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// LogPretty switches to console output for local development.
	LogPretty bool `env:"LOG_PRETTY, default=false"`

	DB    DBConfig
	JWT   JWTConfig
	Redis RedisConfig

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT, default=10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW, default=1m"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
}

type DBConfig struct {
	Driver   string `env:"DB_DRIVER, default=postgres"`
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=flowtrack"`
	Password string `env:"DB_PASSWORD, default=flowtrack"`
	Name     string `env:"DB_NAME, default=flowtrack"`
	SSLMode  string `env:"DB_SSLMODE, default=disable"`
	LogLevel string `env:"DB_LOG_LEVEL, default=warn"`
}

type JWTConfig struct {
	SecretKey         string `env:"JWT_SECRET_KEY, required"`
	Algorithm         string `env:"JWT_ALGORITHM, default=HS256"`
	AccessTokenExpiry int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=60"`
}

// TokenTTL returns the access token lifetime.
func (c JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Minute
}

type RedisConfig struct {
	// Addr left empty disables login rate limiting.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from the given lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDB reads only the database settings. Operator tooling uses it so it
// can run without JWT or Redis configuration.
func LoadDB(ctx context.Context, lookuper envconfig.Lookuper) (*DBConfig, error) {
	var cfg DBConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load database configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := c.DB.validate(); err != nil {
		return err
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	return nil
}

func (c DBConfig) validate() error {
	switch c.Driver {
	case "postgres", "mysql":
		return nil
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Driver)
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
