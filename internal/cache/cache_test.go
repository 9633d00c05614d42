package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "insights:health:u1", Key("health", "u1"))
	assert.Equal(t, "insights:forecast:u1:6", Key("forecast", "u1", "6"))
	assert.Equal(t, "insights:benchmark:u1:familia:12", Key("benchmark", "u1", "familia", "12"))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest map[string]any
	assert.False(t, c.Get(ctx, "insights:health:u1", &dest))

	// Writes and invalidation on a nil cache are no-ops, not panics.
	c.Set(ctx, "insights:health:u1", map[string]int{"score": 72}, TTLHealthScore)
	c.InvalidateUser(ctx, "u1")
	assert.NoError(t, c.Close())
}
