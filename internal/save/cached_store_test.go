package save

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore имитирует недоступный кеш
type brokenStore struct{ *MemoryStore }

var errUnavailable = errors.New("unavailable")

func (b *brokenStore) Save(context.Context, string, []byte) error { return errUnavailable }
func (b *brokenStore) Load(context.Context, string) ([]byte, error) {
	return nil, errUnavailable
}
func (b *brokenStore) Delete(context.Context, string) error { return errUnavailable }

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cold, hot := NewMemoryStore(), NewMemoryStore()
	require.NoError(t, cold.Save(ctx, "old", []byte("from-cold")))

	store := NewCachedStore(cold, hot, nil)

	data, err := store.Load(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, []byte("from-cold"), data)
	assert.Equal(t, CacheStats{Misses: 1}, store.Stats())

	cached, err := hot.Load(ctx, "old")
	require.NoError(t, err, "промах заполняет кеш")
	assert.Equal(t, []byte("from-cold"), cached)

	_, err = store.Load(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1}, store.Stats())

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSceneNotFound)
}

func TestCachedStore_WriteThroughAndDelete(t *testing.T) {
	ctx := context.Background()
	cold, hot := NewMemoryStore(), NewMemoryStore()
	store := NewCachedStore(cold, hot, nil)

	require.NoError(t, store.Save(ctx, "objects", []byte("v1")))
	for _, s := range []Store{cold, hot} {
		data, err := s.Load(ctx, "objects")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), data)
	}

	require.NoError(t, store.Delete(ctx, "objects"))
	_, err := hot.Load(ctx, "objects")
	assert.ErrorIs(t, err, ErrSceneNotFound)
	_, err = cold.Load(ctx, "objects")
	assert.ErrorIs(t, err, ErrSceneNotFound)
}

func TestCachedStore_BrokenCacheFallsBack(t *testing.T) {
	ctx := context.Background()
	cold := NewMemoryStore()
	store := NewCachedStore(cold, &brokenStore{NewMemoryStore()}, nil)

	require.NoError(t, store.Save(ctx, "objects", []byte("data")), "ошибка кеша не прерывает запись")
	data, err := store.Load(ctx, "objects")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
	require.NoError(t, store.Delete(ctx, "objects"))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}
