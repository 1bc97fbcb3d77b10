package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Catalog CatalogConfig
	Storage StorageConfig
	Redis   RedisConfig
	Quotes  QuotesConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUOTEDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTEDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUOTEDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTEDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CatalogConfig struct {
	ProductsCSV string `envconfig:"QUOTEDESK_CATALOG_PRODUCTS_CSV" required:"true"`
	SubsidyCSV  string `envconfig:"QUOTEDESK_CATALOG_SUBSIDY_CSV"`
}

type StorageConfig struct {
	Driver string `envconfig:"QUOTEDESK_STORAGE_DRIVER" default:"pebble"`

	// Path is the on-disk location for the pebble driver.
	Path string `envconfig:"QUOTEDESK_STORAGE_PATH" default:"data/quotedesk"`

	// DSN selects the gorm backend; sqlite file paths and postgres URLs
	// are both accepted.
	DSN string `envconfig:"QUOTEDESK_STORAGE_DSN"`

	// QuotaBytes caps the memory driver; 0 means unbounded.
	QuotaBytes int `envconfig:"QUOTEDESK_STORAGE_QUOTA_BYTES" default:"0"`

	MaxOpenConns    int           `envconfig:"QUOTEDESK_STORAGE_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"QUOTEDESK_STORAGE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTEDESK_STORAGE_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTEDESK_REDIS_URL"`
	PoolSize     int           `envconfig:"QUOTEDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTEDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTEDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTEDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTEDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type QuotesConfig struct {
	MaxSaved          int `envconfig:"QUOTEDESK_QUOTES_MAX_SAVED" default:"50"`
	MaxHistory        int `envconfig:"QUOTEDESK_QUOTES_MAX_HISTORY" default:"100"`
	MaxRecentSearches int `envconfig:"QUOTEDESK_QUOTES_MAX_RECENT_SEARCHES" default:"10"`
	PruneSavedTo      int `envconfig:"QUOTEDESK_QUOTES_PRUNE_SAVED_TO" default:"10"`
	PruneHistoryTo    int `envconfig:"QUOTEDESK_QUOTES_PRUNE_HISTORY_TO" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"QUOTEDESK_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (s *StorageConfig) validate() error {
	switch s.Driver {
	case StorageDriverMemory, StorageDriverPebble, StorageDriverRedis, StorageDriverGorm:
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
	if s.Driver == StorageDriverGorm && s.DSN == "" {
		return fmt.Errorf("%s is required for the gorm storage driver", EnvStorageDSN)
	}
	return nil
}
