package cachesvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache(10 * time.Millisecond)

	t.Run("miss", func(t *testing.T) {
		var p payload
		found, err := c.Get(ctx, "nope", &p)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "graph:all", payload{Name: "g", Items: []string{"a", "b"}}, time.Minute))
		var p payload
		found, err := c.Get(ctx, "graph:all", &p)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, payload{Name: "g", Items: []string{"a", "b"}}, p)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", 1, 20*time.Millisecond))
		var v int
		found, err := c.Get(ctx, "short", &v)
		require.NoError(t, err)
		assert.True(t, found)

		// ItemCount includes expired entries until the janitor removes them
		assert.Eventually(t, func() bool { return c.store.ItemCount() == 1 }, time.Second, 10*time.Millisecond)
	})

	t.Run("delete prefix", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "hadith:search:a", 1, 0))
		require.NoError(t, c.Set(ctx, "hadith:search:b", 2, 0))
		require.NoError(t, c.Set(ctx, "graph:x", 3, 0))
		require.NoError(t, c.DeletePrefix(ctx, "hadith:"))

		var v int
		found, _ := c.Get(ctx, "hadith:search:a", &v)
		assert.False(t, found)
		found, _ = c.Get(ctx, "hadith:search:b", &v)
		assert.False(t, found)
		found, _ = c.Get(ctx, "graph:x", &v)
		assert.True(t, found)
		assert.Equal(t, 3, v)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Delete(ctx, "graph:x"))
		var v int
		found, _ := c.Get(ctx, "graph:x", &v)
		assert.False(t, found)
	})
}
