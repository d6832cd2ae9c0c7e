package cache

import (
	"context"
	"testing"
	"time"

	"billing-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	require.NoError(t, Init(config.RedisConfig{Enabled: false}))
	assert.False(t, Enabled())

	ctx := context.Background()
	SetCached(ctx, "k", []byte("v"), time.Minute)
	_, ok := GetCached(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, Ping(ctx))

	var r Responses
	assert.True(t, r.Reserve(ctx, "key", []byte("{}"), time.Minute))
	_, ok = r.Get(ctx, "key")
	assert.False(t, ok)
	r.Put(ctx, "key", []byte("{}"), time.Minute)
	r.Release(ctx, "key")
}
