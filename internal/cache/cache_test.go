package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, Config{Kind: "memory", Prefix: "cd"})
	require.NoError(t, err)

	_, err = c.Get(ctx, "k")
	require.True(t, IsNotFound(err))

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, _ = c.Exists(ctx, "k")
	require.False(t, ok)

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, "memory", st.Driver)
	require.EqualValues(t, 1, st.Hits)
	require.EqualValues(t, 1, st.Misses)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", time.Minute)
	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))

	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, "short")
		return IsNotFound(err)
	}, time.Second, 10*time.Millisecond)
}

func TestMemory_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("a", 0)
	require.NoError(t, a.Set(ctx, "k", "1", 0))
	require.Equal(t, "a:k", prefixed("a", "k"))
	require.Equal(t, "k", prefixed("", "k"))
}
