package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazemadel/quotedesk-backend/pkg/config"
	"github.com/hazemadel/quotedesk-backend/pkg/logger"
)

// ErrNotFound reports a missing key on Get.
var ErrNotFound = errors.New("storage: key not found")

// ErrQuotaExceeded reports a rejected write due to size limits. Callers
// recover by pruning and retrying; it is never fatal.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Store is the key-value capability the persistence layer builds on.
// Values are opaque JSON blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// IsQuotaExceeded reports whether err stems from a storage size limit.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// Open boots the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, redisCfg config.RedisConfig, logg *logger.Logger) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Driver {
	case config.StorageDriverMemory:
		store = NewMemoryStore(cfg.QuotaBytes)
	case config.StorageDriverPebble:
		store, err = NewPebbleStore(cfg.Path)
	case config.StorageDriverRedis:
		store, err = NewRedisStore(ctx, redisCfg)
	case config.StorageDriverGorm:
		store, err = NewGormStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Driver, err)
	}

	if logg != nil {
		logg.Info(logg.WithStorageDriver(ctx, cfg.Driver), "storage ready")
	}
	return store, nil
}
