package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTTL(t *testing.T) {
	m := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "catalog:categories", []string{"Electronics", "Food"}, time.Minute))

	var got []string
	require.NoError(t, m.Get(ctx, "catalog:categories", &got))
	assert.Equal(t, []string{"Electronics", "Food"}, got)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, m.Get(ctx, "catalog:categories", &got), ErrMiss)
}

func TestMemoryDel(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", 1, 0))
	require.NoError(t, m.Del(ctx, "a", "missing"))

	var n int
	assert.ErrorIs(t, m.Get(ctx, "a", &n), ErrMiss)
}

func TestRemember(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"Fashion"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(ctx, m, "k", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Fashion"}, got)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("db down")
	_, err := Remember(ctx, Noop{}, "k", time.Minute, func() ([]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
