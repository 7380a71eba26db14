package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialwise/directory/common/logger"
)

func newMemory(t *testing.T) *MemoryCache {
	t.Helper()
	return NewMemoryCache(logger.New("error", "json"))
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := newMemory(t)
	defer c.Close()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newMemory(t)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheUseAfterClose(t *testing.T) {
	c := newMemory(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Close())

	// Operations racing shutdown must not panic on the nil map
	assert.NoError(t, c.Set(ctx, "k2", []byte("v2"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))

	_, ok, err := c.Get(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, ok)
}
