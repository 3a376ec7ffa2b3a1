package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsAlwaysEmpty(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.Nil(t, New(nil, time.Minute))

	require.NoError(t, c.SetJSON(ctx, UserKey(1), map[string]string{"username": "ana"}))

	var dst map[string]string
	hit, err := c.GetJSON(ctx, UserKey(1), &dst)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, dst)

	require.NoError(t, c.Remember(ctx, RefreshKey("abc"), time.Minute))
	consumed, err := c.Consume(ctx, RefreshKey("abc"))
	require.NoError(t, err)
	assert.False(t, consumed)

	assert.NoError(t, c.Del(ctx, UserKey(1), StatsKey(1)))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "stats:user:42", StatsKey(42))
	assert.Equal(t, "refresh:0b4c", RefreshKey("0b4c"))
}
