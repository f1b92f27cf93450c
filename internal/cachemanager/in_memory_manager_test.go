package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type renderedDoc struct {
	Lines []string
}

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[*renderedDoc]("test", DefaultExpiration, DefaultCleanupInterval)

	_, ok := c.Get(ctx, "missing")
	require.False(t, ok)

	doc := &renderedDoc{Lines: []string{"print(1)"}}
	c.Set(ctx, "a", doc, time.Minute)

	got, ok := c.Get(ctx, "a")
	require.True(t, ok)
	require.Same(t, doc, got)
	require.Equal(t, 1, c.Len())
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[int]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "k", 7, time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[int]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "k", 3, 50*time.Millisecond)
	v, ok := c.GetWithRefresh(ctx, "k", time.Hour)
	require.True(t, ok)
	require.Equal(t, 3, v)

	time.Sleep(100 * time.Millisecond)
	v, ok = c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "b", "2", time.Minute)
	c.Set(ctx, "c", "3", time.Minute)

	require.NoError(t, c.Delete(ctx, "a", "nope"))
	require.Equal(t, 2, c.Len())

	require.NoError(t, c.Flush(ctx))
	require.Equal(t, 0, c.Len())
}
