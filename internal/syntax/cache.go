package syntax

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/zjrosen/pytutor/internal/cachemanager"
	"github.com/zjrosen/pytutor/internal/log"
)

// DefaultCacheTTL is how long a rendered buffer stays cached.
const DefaultCacheTTL = 5 * time.Minute

type renderInput struct {
	buffer     string
	errorLines []int
}

// CachedRenderer memoizes Render on (buffer, error lines). Render is pure, so
// a hit is indistinguishable from recomputing.
type CachedRenderer struct {
	rtc *cachemanager.ReadThroughCache[string, []Line, renderInput]
	ttl time.Duration
}

// NewCachedRenderer wraps cache. A ttl <= 0 uses DefaultCacheTTL.
func NewCachedRenderer(cache cachemanager.CacheManager[string, []Line], ttl time.Duration) *CachedRenderer {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	load := func(_ context.Context, in renderInput) ([]Line, error) {
		log.Debug(log.CatSyntax, "rendering buffer", "bytes", len(in.buffer), "errorLines", len(in.errorLines))
		return Render(in.buffer, in.errorLines), nil
	}
	return &CachedRenderer{
		rtc: cachemanager.NewReadThroughCache(cache, load, false),
		ttl: ttl,
	}
}

// Render returns the rendered lines for buffer, reusing a cached result when
// the same buffer and error lines were rendered before.
func (c *CachedRenderer) Render(ctx context.Context, buffer string, errorLines []int) []Line {
	in := renderInput{buffer: buffer, errorLines: errorLines}
	lines, _ := c.rtc.GetWithRefresh(ctx, CacheKey(buffer, errorLines), in, c.ttl)
	return lines
}

// CacheKey identifies a render input. Error line order and duplicates do not
// affect the key.
func CacheKey(buffer string, errorLines []int) string {
	sum := sha256.Sum256([]byte(buffer))

	sorted := slices.Clone(errorLines)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = strconv.Itoa(n)
	}
	return hex.EncodeToString(sum[:]) + ":" + strings.Join(parts, ",")
}
