package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/pytutor/internal/cachemanager"
)

func TestCachedRenderer_ReusesResult(t *testing.T) {
	cache := cachemanager.NewInMemoryCacheManager[[]Line]("render", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	r := NewCachedRenderer(cache, 0)
	ctx := context.Background()

	first := r.Render(ctx, "print(1)", []int{1})
	second := r.Render(ctx, "print(1)", []int{1})

	require.Equal(t, Render("print(1)", []int{1}), first)
	require.Equal(t, first, second)
	require.Equal(t, 1, cache.Len())

	r.Render(ctx, "print(2)", []int{1})
	require.Equal(t, 2, cache.Len())
}

func TestCacheKey(t *testing.T) {
	require.Equal(t, CacheKey("x", []int{3, 1, 3}), CacheKey("x", []int{1, 3}))
	require.NotEqual(t, CacheKey("x", []int{1}), CacheKey("x", nil))
	require.NotEqual(t, CacheKey("x", nil), CacheKey("y", nil))
}
