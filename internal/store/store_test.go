package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront-service/internal/config"
)

func TestFilterMatch(t *testing.T) {
	doc := Document{"category": "shoes", "in_stock": true, "price": 129.0}
	assert.True(t, Filter(nil).Match(doc))
	assert.True(t, Filter{"category": "shoes", "in_stock": true}.Match(doc))
	assert.False(t, Filter{"category": "bags"}.Match(doc))
	assert.False(t, Filter{"missing": "x"}.Match(doc))

	decoded := Document{"qty": float64(3), "sku": "3"}
	assert.True(t, Filter{"qty": 3}.Match(decoded))
	assert.True(t, Filter{"qty": int64(3)}.Match(decoded))
	assert.False(t, Filter{"qty": 4}.Match(decoded))
	assert.False(t, Filter{"sku": 3}.Match(decoded))
}

func TestPrepareStripsIDAndStamps(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	in := Document{IDField: "abc", "title": "t"}
	out := prepare(in, now)
	assert.NotContains(t, out, IDField)
	assert.Equal(t, now.UTC(), out["created_at"])
	assert.Equal(t, now.UTC(), out["updated_at"])
	assert.Contains(t, in, IDField, "input must not be modified")
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, config.Config{StoreBackend: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Name())

	st, err = Open(ctx, config.Config{StoreBackend: "pebble", PebbleDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "pebble", st.Name())
	require.NoError(t, st.Close())

	st, err = Open(ctx, config.Config{StoreBackend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", st.Name())
	require.NoError(t, st.Close())

	_, err = Open(ctx, config.Config{StoreBackend: "mongo"})
	assert.True(t, errors.Is(err, ErrNotConfigured))

	_, err = Open(ctx, config.Config{StoreBackend: "cassandra"})
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}
