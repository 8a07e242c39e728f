package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	SecretKey string `env:"SECRET_KEY, required"`
	// JWTSecret signs API tokens. Falls back to SecretKey.
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`

	// DatabaseURL selects the backend by scheme: sqlite://, postgres://,
	// mysql:// or mongodb://.
	DatabaseURL string `env:"DATABASE_URL, default=sqlite:///tasks.db"`
	MongoDB     string `env:"MONGO_DB,     default=taskdesk"`

	Session SessionConfig
	Redis   RedisConfig
	GenAI   GenAIConfig

	CurrencySymbol string `env:"CURRENCY_SYMBOL, default=R$"`
}

type SessionConfig struct {
	Name string        `env:"SESSION_NAME, default=taskdesk_session"`
	TTL  time.Duration `env:"SESSION_TTL,  default=168h"`
}

// RedisConfig is optional. An empty Addr keeps sessions in signed cookies.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type GenAIConfig struct {
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"GENAI_MODEL,   default=gemini-2.5-flash"`
	Timeout time.Duration `env:"GENAI_TIMEOUT, default=60s"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// UsesMongo reports whether DatabaseURL points at MongoDB.
func (c *Config) UsesMongo() bool {
	return strings.HasPrefix(c.DatabaseURL, "mongodb://") || strings.HasPrefix(c.DatabaseURL, "mongodb+srv://")
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.SecretKey
	}
	return &cfg, nil
}
