package kv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedStore(t *testing.T) {
	storeContract(t, NewCachedStore(NewMemoryStore(), 1, 0))
}

func TestCachedStore_ReadsThroughAndCaches(t *testing.T) {
	ctx := context.Background()
	backend := newFailingStore()
	require.NoError(t, backend.Set(ctx, KeyTheme, "rose"))

	store := NewCachedStore(backend, 1, 0)
	value, err := store.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "rose", value)

	// served from the cache now
	backend.failGet = true
	value, err = store.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "rose", value)
	assert.Greater(t, store.HitRate(), 0.0)

	// not cached keys still need the backend
	_, err = store.Get(ctx, KeySteps)
	assert.ErrorIs(t, err, errBackendDown)
}

func TestCachedStore_FailedBackendWriteNotCached(t *testing.T) {
	ctx := context.Background()
	backend := newFailingStore()
	store := NewCachedStore(backend, 1, 0)

	require.NoError(t, store.Set(ctx, KeyTheme, "ocean"))

	backend.failSet = true
	assert.ErrorIs(t, store.Set(ctx, KeyTheme, "sunset"), errBackendDown)

	backend.failSet = false
	value, err := store.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "ocean", value)
}

func TestCachedStore_DeleteEvicts(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	store := NewCachedStore(backend, 1, 0)

	require.NoError(t, store.Set(ctx, KeyTheme, "ocean"))
	_, err := store.Get(ctx, KeyTheme)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, KeyTheme))
	_, err = store.Get(ctx, KeyTheme)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

// pausingStore holds the first Get after it read the backend, until released.
type pausingStore struct {
	*MemoryStore
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newPausingStore() *pausingStore {
	return &pausingStore{
		MemoryStore: NewMemoryStore(),
		read:        make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *pausingStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.MemoryStore.Get(ctx, key)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return value, err
}

func TestCachedStore_SlowMissDoesNotOverwriteWrites(t *testing.T) {
	for _, tc := range []struct {
		name    string
		write   func(ctx context.Context, store *CachedStore) error
		want    string
		wantErr error
	}{
		{
			name:  "set",
			write: func(ctx context.Context, store *CachedStore) error { return store.Set(ctx, KeyCart, "new") },
			want:  "new",
		},
		{
			name:    "delete",
			write:   func(ctx context.Context, store *CachedStore) error { return store.Delete(ctx, KeyCart) },
			wantErr: ErrKeyNotFound,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			backend := newPausingStore()
			require.NoError(t, backend.MemoryStore.Set(ctx, KeyCart, "old"))
			store := NewCachedStore(backend, 1, 0)

			missDone := make(chan string)
			go func() {
				value, _ := store.Get(ctx, KeyCart)
				missDone <- value
			}()
			<-backend.read

			writeDone := make(chan error, 1)
			go func() {
				writeDone <- tc.write(ctx, store)
			}()

			select {
			case <-writeDone:
				t.Fatal("write finished while a miss of the same key was in flight")
			case <-time.After(50 * time.Millisecond):
			}

			close(backend.release)
			assert.Equal(t, "old", <-missDone)
			require.NoError(t, <-writeDone)

			value, err := store.Get(ctx, KeyCart)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, value)
		})
	}
}
