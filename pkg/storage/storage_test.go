package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hazemadel/quotedesk-backend/pkg/config"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "draft", []byte(`{"items":[]}`)))

	got, err := store.Get(ctx, "draft")
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[]}`, string(got))

	require.NoError(t, store.Remove(ctx, "draft"))
	require.NoError(t, store.Remove(ctx, "draft"), "remove must be idempotent")

	_, err = store.Get(ctx, "draft")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	original := []byte(`{"n":1}`)
	require.NoError(t, store.Set(ctx, "k", original))
	original[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `{"n":1}`, string(got))

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `{"n":1}`, string(again))
}

func TestMemoryStoreQuota(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)

	require.NoError(t, store.Set(ctx, "a", []byte("12345")))
	require.NoError(t, store.Set(ctx, "b", []byte("12345")))

	err := store.Set(ctx, "c", []byte("x"))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	require.True(t, IsQuotaExceeded(err))

	// Overwriting within budget is fine; only growth beyond the cap fails.
	require.NoError(t, store.Set(ctx, "a", []byte("123")))
	require.NoError(t, store.Set(ctx, "c", []byte("xy")))

	// Removing frees budget.
	require.NoError(t, store.Remove(ctx, "b"))
	require.NoError(t, store.Set(ctx, "d", []byte("12345")))
}

func TestPebbleStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewPebbleStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "quotes", []byte(`[]`)))

	got, err := store.Get(ctx, "quotes")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	require.NoError(t, store.Set(ctx, "quotes", []byte(`[{"id":"q1"}]`)))
	got, err = store.Get(ctx, "quotes")
	require.NoError(t, err)
	require.Equal(t, `[{"id":"q1"}]`, string(got))

	require.NoError(t, store.Remove(ctx, "quotes"))
	require.NoError(t, store.Remove(ctx, "quotes"))
	_, err = store.Get(ctx, "quotes")
	require.ErrorIs(t, err, ErrNotFound)
}

func sqliteConfig(t *testing.T) config.StorageConfig {
	t.Helper()
	return config.StorageConfig{
		Driver:          config.StorageDriverGorm,
		DSN:             filepath.Join(t.TempDir(), "kv.db"),
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
}

func TestGormStoreRoundTripSqlite(t *testing.T) {
	ctx := context.Background()
	store, err := NewGormStore(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "prefs", []byte(`{"theme":"dark"}`)))
	require.NoError(t, store.Set(ctx, "prefs", []byte(`{"theme":"light"}`)), "set must upsert")

	got, err := store.Get(ctx, "prefs")
	require.NoError(t, err)
	require.JSONEq(t, `{"theme":"light"}`, string(got))

	require.NoError(t, store.Remove(ctx, "prefs"))
	require.NoError(t, store.Remove(ctx, "prefs"))
	_, err = store.Get(ctx, "prefs")
	require.ErrorIs(t, err, ErrNotFound)
}
