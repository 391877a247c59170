package storage

import (
	"sync"

	"github.com/alignecoderepos/ttlkv/internal/clock"
)

// SyncStore serializes access to a Store behind a mutex so that one instance
// can be shared by several goroutines. Every call runs to completion under
// the lock, so no caller observes the indexes mid-update.
type SyncStore struct {
	mu    sync.Mutex
	store *Store
}

// NewSync creates a SyncStore around a new Store.
func NewSync(initial []Record, clk clock.Clock) *SyncStore {
	return &SyncStore{store: New(initial, clk)}
}

// Wrap guards an existing Store. The caller must stop using s directly.
func Wrap(s *Store) *SyncStore {
	return &SyncStore{store: s}
}

func (ss *SyncStore) Set(key string, value []byte, ttl uint32) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.store.Set(key, value, ttl)
}

func (ss *SyncStore) Remove(key string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.Remove(key)
}

// Get takes the exclusive lock too: reads update statistics.
func (ss *SyncStore) Get(key string) ([]byte, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.Get(key)
}

func (ss *SyncStore) GetManySorted(startKey string, count uint32) []Pair {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.GetManySorted(startKey, count)
}

func (ss *SyncStore) RemoveOneExpiredEntry() (Pair, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.RemoveOneExpiredEntry()
}

func (ss *SyncStore) RemoveExpired(limit int) []Pair {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.RemoveExpired(limit)
}

func (ss *SyncStore) TTL(key string) int64 {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.TTL(key)
}

func (ss *SyncStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.Len()
}

func (ss *SyncStore) Stats() Stats {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.store.Stats()
}
