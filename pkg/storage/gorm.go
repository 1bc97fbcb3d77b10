package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/hazemadel/quotedesk-backend/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// kvEntry is the single table the gorm driver manages.
type kvEntry struct {
	Key       string `gorm:"column:k;primaryKey;size:255"`
	Value     []byte `gorm:"column:v"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// GormStore implements Store on a relational backend through GORM. Sqlite
// DSNs keep everything in one file; postgres URLs move persistence into a
// shared database.
type GormStore struct {
	conn *gorm.DB
}

func NewGormStore(ctx context.Context, cfg config.StorageConfig) (*GormStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage DSN is required")
	}

	dialector := dialectorFor(cfg.DSN)

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := conn.WithContext(ctx).AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrating kv table: %w", err)
	}

	return &GormStore{conn: conn}, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true})
	}
	return sqlite.Open(dsn)
}

func (g *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry kvEntry
	err := g.conn.WithContext(ctx).First(&entry, "k = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

func (g *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return g.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "k"}},
			DoUpdates: clause.AssignmentColumns([]string{"v", "updated_at"}),
		}).
		Create(&entry).Error
}

func (g *GormStore) Remove(ctx context.Context, key string) error {
	return g.conn.WithContext(ctx).Delete(&kvEntry{}, "k = ?", key).Error
}

func (g *GormStore) Close() error {
	sqlDB, err := g.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
