// Package cursorstore persists the last processed block per project/chain
// pair. The cursor expires after a TTL so a tracker that has been down for
// a long time reseeds from the live chain instead of replaying a huge range.
package cursorstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/dexwatch/swap-tracker/pkg/infra"
	"github.com/dexwatch/swap-tracker/pkg/kvstore"
)

const cursorsPrefix = "cursors"

type Store interface {
	// Get returns the stored block number, or found=false when no cursor
	// exists (first run or expired).
	Get(project, chain string) (block string, found bool, err error)
	Set(project, chain, block string, ttl time.Duration) error
	Close() error
}

type cursorStore struct {
	store infra.KVStore
	name  string // tracker name, namespaces the keys
}

func New(store infra.KVStore, trackerName string) Store {
	return &cursorStore{store: store, name: trackerName}
}

func (cs *cursorStore) key(project, chain string) string {
	return fmt.Sprintf("%s/%s/%s/%s/blockNum", cursorsPrefix, cs.name, project, chain)
}

func (cs *cursorStore) Get(project, chain string) (string, bool, error) {
	block, err := cs.store.Get(cs.key(project, chain))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return block, true, nil
}

func (cs *cursorStore) Set(project, chain, block string, ttl time.Duration) error {
	if project == "" || chain == "" {
		return errors.New("project and chain are required")
	}
	if block == "" {
		return errors.New("block number is required")
	}
	return cs.store.SetWithTTL(cs.key(project, chain), block, ttl)
}

func (cs *cursorStore) Close() error {
	return cs.store.Close()
}
