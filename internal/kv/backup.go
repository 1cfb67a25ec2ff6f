package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"
)

// Snapshot is a raw copy of the persisted keys; absent keys are left out.
type Snapshot map[string]string

func TakeSnapshot(ctx context.Context, store Store) (Snapshot, error) {
	snapshot := Snapshot{}
	for _, key := range AllKeys {
		value, err := store.Get(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", key, err)
		}
		snapshot[key] = value
	}
	return snapshot, nil
}

// Restore writes the snapshot into store. Keys missing from the snapshot are
// deleted, so the store ends up holding exactly what was backed up.
func Restore(ctx context.Context, store Store, snapshot Snapshot) error {
	for key := range snapshot {
		if !slices.Contains(AllKeys, key) {
			return fmt.Errorf("unknown key in snapshot: %s", key)
		}
	}

	for _, key := range AllKeys {
		value, ok := snapshot[key]
		if !ok {
			if err := store.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			continue
		}
		if err := store.Set(ctx, key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	log.Debugf("restored %d keys", len(snapshot))
	return nil
}
