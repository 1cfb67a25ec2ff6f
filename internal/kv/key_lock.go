package kv

import "sync"

// keyLocks holds one mutex per store and key, shared by every Collection and
// Value built over that pair. Store implementations must be comparable
// (all of them are pointers).
var keyLocks sync.Map

type lockID struct {
	store Store
	key   string
}

func lockFor(store Store, key string) *sync.Mutex {
	mutex, _ := keyLocks.LoadOrStore(lockID{store: store, key: key}, &sync.Mutex{})
	return mutex.(*sync.Mutex)
}
