package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/internal/infrastructure/monitoring/logging"
)

type cachedAnalysis struct {
	CaseNumber string `json:"case_number"`
	Summary    string `json:"summary"`
}

func newTestCache(t *testing.T) Cache {
	t.Helper()
	client, _ := newTestClient(t)
	return NewRedisCache(client, logging.NewNopLogger())
}

func TestCache_SetGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	in := cachedAnalysis{CaseNumber: "CRL.A. 1482/2012", Summary: "appeal dismissed"}
	require.NoError(t, cache.Set(ctx, "analyze:CRL.A. 1482/2012:en", in, time.Minute))

	var out cachedAnalysis
	require.NoError(t, cache.Get(ctx, "analyze:CRL.A. 1482/2012:en", &out))
	assert.Equal(t, in, out)
}

func TestCache_GetMiss(t *testing.T) {
	cache := newTestCache(t)

	var out cachedAnalysis
	err := cache.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCache_GetOrSet_LoadsOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return cachedAnalysis{CaseNumber: "W.P. 2041/2019", Summary: "petition allowed"}, nil
	}

	var first cachedAnalysis
	require.NoError(t, cache.GetOrSet(ctx, "analyze:W.P. 2041/2019:en", &first, time.Minute, loader))
	assert.Equal(t, "petition allowed", first.Summary)

	var second cachedAnalysis
	require.NoError(t, cache.GetOrSet(ctx, "analyze:W.P. 2041/2019:en", &second, time.Minute, loader))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestCache_GetOrSet_NullIsRemembered(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return nil, nil
	}

	var out cachedAnalysis
	assert.ErrorIs(t, cache.GetOrSet(ctx, "analyze:missing:en", &out, time.Minute, loader), ErrCacheMiss)
	// The null marker answers the second call without reloading.
	assert.ErrorIs(t, cache.GetOrSet(ctx, "analyze:missing:en", &out, time.Minute, loader), ErrCacheMiss)
	assert.Equal(t, 1, loads)
}

func TestCache_Get_DistinguishesNullFromMiss(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var out cachedAnalysis
	assert.ErrorIs(t, cache.Get(ctx, "analyze:missing:en", &out), ErrCacheMiss)

	loader := func(ctx context.Context) (interface{}, error) { return nil, nil }
	assert.ErrorIs(t, cache.GetOrSet(ctx, "analyze:missing:en", &out, time.Minute, loader), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "analyze:missing:en", &out), ErrCacheNull)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "analyze:CRL.A. 1482/2012:en", "a", time.Minute))
	require.NoError(t, cache.Set(ctx, "analyze:CRL.A. 1482/2012:hi", "b", time.Minute))
	require.NoError(t, cache.Set(ctx, "analyze:W.P. 2041/2019:en", "c", time.Minute))

	deleted, err := cache.DeleteByPrefix(ctx, "analyze:CRL.A. 1482/2012:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	exists, err := cache.Exists(ctx, "analyze:W.P. 2041/2019:en")
	require.NoError(t, err)
	assert.True(t, exists)
}
