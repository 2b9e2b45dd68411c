package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type StoreKind string

const (
	StoreRemote StoreKind = "remote"
	StoreLocal  StoreKind = "local"
	StoreSQL    StoreKind = "sql"
)

type DBConfig struct {
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.Username, c.Password, c.Host, c.Port, c.Name)
}

type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	BucketName      string `env:"BUCKET_NAME"`
}

type Config struct {
	// HTTP listen address, e.g. ":8083"
	Address string `env:"ADDRESS" envDefault:":8083"`
	Env     string `env:"ENV" envDefault:"local"`

	JWTSecret    string `env:"JWT_SECRET"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`

	RecordStore    StoreKind `env:"RECORD_STORE" envDefault:"local"`
	RecordStoreURL string    `env:"RECORD_STORE_URL" envDefault:"http://localhost:3000"`
	LocalStorePath string    `env:"LOCAL_STORE_PATH" envDefault:"data/records"`
	DB             DBConfig  `envPrefix:"DB_"`

	BrokerAddress string   `env:"ASYNC_BROKER_ADDRESS" envDefault:"localhost:6379"`
	R2            R2Config `envPrefix:"R2_"`

	SentryDSN string `env:"SENTRY_DSN"`
	// How long an idle studio workspace or chat is kept in memory.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}

func (c Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "test"
}

// Load loads .env (if present) and parses environment variables into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.RecordStore {
	case StoreRemote, StoreLocal, StoreSQL:
	default:
		return Config{}, fmt.Errorf("unknown RECORD_STORE %q", cfg.RecordStore)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return cfg, nil
}
