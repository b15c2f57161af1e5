package kvstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	item, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, item)

	require.NoError(t, store.Set(ctx, "k", Item{Value: "v1"}))
	item, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, item)
	require.Equal(t, "v1", item.Value)

	// Overwrite replaces the value for the key.
	require.NoError(t, store.Set(ctx, "k", Item{Value: "v2"}))
	item, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", item.Value)

	require.NoError(t, store.Delete(ctx, "k"))
	item, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, item)

	require.NoError(t, store.Delete(ctx, "k"))
}

func TestMemoryStore_SweepRemovesExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.Set(ctx, "old", Item{Value: "a", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Set(ctx, "live", Item{Value: "b", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Set(ctx, "forever", Item{Value: "c"}))

	removed, err := store.Sweep(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	item, _ := store.Get(ctx, "old")
	require.Nil(t, item)
	item, _ = store.Get(ctx, "live")
	require.NotNil(t, item)
	item, _ = store.Get(ctx, "forever")
	require.NotNil(t, item)
}

func TestBoundedMemoryStore_EvictsOldestHalf(t *testing.T) {
	ctx := context.Background()
	store := NewBoundedMemoryStore(10)

	for i := 0; i < 11; i++ {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("k%02d", i), Item{Value: "v"}))
	}

	// Crossing capacity keeps only the newest half.
	require.Equal(t, 5, store.Len())

	item, err := store.Get(ctx, "k00")
	require.NoError(t, err)
	require.Nil(t, item, "oldest entry should be evicted")

	item, err = store.Get(ctx, "k10")
	require.NoError(t, err)
	require.NotNil(t, item, "newest entry should survive")
}
