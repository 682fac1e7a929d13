package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

type Config struct {
	Port         string `env:"PORT,          default=8080"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	LogPretty    bool   `env:"LOG_PRETTY,    default=false"`
	CookieSecure bool   `env:"COOKIE_SECURE, default=false"`

	Backend BackendConfig
	Storage StorageConfig
	Sync    SyncConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	URL           string        `env:"BACKEND_URL,            default=http://localhost:8000/api"`
	Timeout       time.Duration `env:"BACKEND_TIMEOUT,        default=30s"`
	UploadTimeout time.Duration `env:"BACKEND_UPLOAD_TIMEOUT, default=2m"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER, default=memory"`
	// TTL expires idle client state; zero keeps it forever.
	TTL time.Duration `env:"STORAGE_TTL, default=720h"`
}

type SyncConfig struct {
	Workers int           `env:"SYNC_WORKERS, default=4"`
	Timeout time.Duration `env:"SYNC_TIMEOUT, default=30s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskdesk"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageRedis, StorageMongo:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Backend.URL == "" {
		return fmt.Errorf("config: BACKEND_URL is required")
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("config: SYNC_WORKERS must be at least 1")
	}
	return nil
}

// Production reports whether ENV selects production behaviour.
func (c *Config) Production() bool { return c.Env == "production" }
