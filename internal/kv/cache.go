package kv

import (
	"context"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// CachedStore is a write-through read cache in front of another Store.
// Backend writes happen first, so a failed backend write never leaves
// a value in the cache that the backend does not have. Misses and writes of
// the same key are serialised, so a slow miss can not put back a value that a
// concurrent write already replaced.
type CachedStore struct {
	backend       Store
	cache         *freecache.Cache
	expireSeconds int
	keyLocks      sync.Map
}

// NewCachedStore creates the cache with sizeMB megabytes (freecache enforces a 512KB minimum).
// A zero ttl keeps entries until evicted.
func NewCachedStore(backend Store, sizeMB int, ttl time.Duration) *CachedStore {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &CachedStore{
		backend:       backend,
		cache:         freecache.NewCache(sizeMB * megabyte),
		expireSeconds: int(ttl.Seconds()),
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) (string, error) {
	if cached, err := s.cache.Get([]byte(key)); err == nil {
		log.Tracef("kv cache hit: %s", key)
		return string(cached), nil
	}

	unlock := s.lockKey(key)
	defer unlock()

	// filled while we waited for the lock
	if cached, err := s.cache.Get([]byte(key)); err == nil {
		return string(cached), nil
	}

	value, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", err
	}

	s.setCache(key, value)
	return value, nil
}

func (s *CachedStore) Set(ctx context.Context, key, value string) error {
	unlock := s.lockKey(key)
	defer unlock()

	if err := s.backend.Set(ctx, key, value); err != nil {
		// the cached copy may now be stale compared to a partial backend write
		s.cache.Del([]byte(key))
		return err
	}
	s.setCache(key, value)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	unlock := s.lockKey(key)
	defer unlock()

	s.cache.Del([]byte(key))
	err := s.backend.Delete(ctx, key)
	s.cache.Del([]byte(key))
	return err
}

func (s *CachedStore) lockKey(key string) func() {
	mutex, _ := s.keyLocks.LoadOrStore(key, &sync.Mutex{})
	m := mutex.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *CachedStore) setCache(key, value string) {
	if err := s.cache.Set([]byte(key), []byte(value), s.expireSeconds); err != nil {
		// e.g. value larger than 1/1024 of the cache size
		s.cache.Del([]byte(key))
		log.Debugf("kv cache set %s: %s", key, err)
	}
}

// HitRate is the cache hit ratio since creation.
func (s *CachedStore) HitRate() float64 {
	return s.cache.HitRate()
}
