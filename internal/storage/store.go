package storage

import (
	"github.com/alignecoderepos/ttlkv/internal/clock"
)

// Store is an in-memory key-value store with per-entry TTL.
//
// Every entry lives in an arena and is reachable through three views kept in
// lockstep: a hash index by key, a sorted index by key and an expiration
// index holding only entries that can expire. Expiration is lazy: expired
// entries are hidden from reads but stay in the store until Remove,
// RemoveOneExpiredEntry or RemoveExpired takes them out.
//
// Store is not safe for concurrent use. Callers sharing one instance across
// goroutines must serialize access themselves, for example through SyncStore.
type Store struct {
	clock   clock.Clock
	entries arena
	byKey   map[string]handle
	sorted  *sortedIndex
	expiry  *expiryIndex

	// Statistics
	stats Stats
}

// Stats holds operation counters and index sizes.
type Stats struct {
	CmdGet       uint64
	GetHits      uint64
	GetMisses    uint64
	CmdSet       uint64
	CmdRemove    uint64
	CmdScan      uint64
	ExpiredTotal uint64
	Entries      int // includes expired entries not yet reaped
	Expiring     int
}

// New creates a Store holding initial. When a key repeats in initial the
// later record wins. clk must not be nil; callers wanting wall time pass
// clock.System{}.
func New(initial []Record, clk clock.Clock) *Store {
	if clk == nil {
		panic("storage: New called with nil clock")
	}

	s := &Store{
		clock:  clk,
		byKey:  make(map[string]handle, len(initial)),
		sorted: newSortedIndex(),
		expiry: newExpiryIndex(),
	}

	now := s.now()
	for _, r := range initial {
		s.put(r.Key, r.Value, expirationAt(now, r.TTL))
	}

	return s
}

// now returns the clock reading in whole unix seconds.
func (s *Store) now() uint64 {
	sec := s.clock.Now().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}

// Set stores value under key. A ttl of 0 means the entry never expires;
// otherwise it expires ttl seconds from now. Any previous value and TTL of
// key are replaced.
func (s *Store) Set(key string, value []byte, ttl uint32) {
	s.stats.CmdSet++
	s.put(key, value, expirationAt(s.now(), ttl))
}

func (s *Store) put(key string, value []byte, expiration uint64) {
	if h, ok := s.byKey[key]; ok {
		e := s.entries.get(h)
		if e.Expiration != expiration {
			if e.Expiration != 0 {
				s.expiry.delete(e.Expiration, key)
			}
			if expiration != 0 {
				s.expiry.insert(expiration, key, h)
			}
			e.Expiration = expiration
		}
		e.Value = cloneBytes(value)
		return
	}

	h := s.entries.alloc(Entry{
		Key:        key,
		Value:      cloneBytes(value),
		Expiration: expiration,
	})
	s.byKey[key] = h
	s.sorted.insert(key, h)
	if expiration != 0 {
		s.expiry.insert(expiration, key, h)
	}
}

// Remove deletes key regardless of its expiration state and reports whether
// it was present.
func (s *Store) Remove(key string) bool {
	s.stats.CmdRemove++

	h, ok := s.byKey[key]
	if !ok {
		return false
	}
	s.removeHandle(h)
	return true
}

// removeHandle takes the entry at h out of every index and frees its slot.
func (s *Store) removeHandle(h handle) {
	e := s.entries.get(h)
	delete(s.byKey, e.Key)
	s.sorted.delete(e.Key)
	if e.Expiration != 0 {
		s.expiry.delete(e.Expiration, e.Key)
	}
	s.entries.release(h)
}

// Get returns a copy of the value stored under key. Expired entries are
// reported as missing but are not removed.
func (s *Store) Get(key string) ([]byte, bool) {
	s.stats.CmdGet++

	h, ok := s.byKey[key]
	if !ok {
		s.stats.GetMisses++
		return nil, false
	}

	e := s.entries.get(h)
	if e.IsExpired(s.now()) {
		s.stats.GetMisses++
		return nil, false
	}

	s.stats.GetHits++
	return cloneBytes(e.Value), true
}

// GetManySorted returns up to count live pairs whose keys are >= startKey,
// in ascending key order. Expired entries are skipped and not counted.
func (s *Store) GetManySorted(startKey string, count uint32) []Pair {
	s.stats.CmdScan++

	n := int(count)
	if l := s.entries.len(); n > l || n < 0 {
		n = l
	}
	result := make([]Pair, 0, n)
	if count == 0 {
		return result
	}

	now := s.now()
	s.sorted.ascendFrom(startKey, func(it keyItem) bool {
		e := s.entries.get(it.h)
		if !e.IsExpired(now) {
			result = append(result, Pair{Key: e.Key, Value: cloneBytes(e.Value)})
		}
		return uint32(len(result)) < count
	})

	return result
}

// RemoveOneExpiredEntry removes one expired entry and returns it. When
// several are expired the one with the earliest expiration goes first.
func (s *Store) RemoveOneExpiredEntry() (Pair, bool) {
	it, ok := s.expiry.earliest()
	if !ok || it.expiration > s.now() {
		return Pair{}, false
	}

	e := s.entries.get(it.h)
	p := Pair{Key: e.Key, Value: e.Value} // slot is zeroed on release, no copy needed
	s.removeHandle(it.h)
	s.stats.ExpiredTotal++
	return p, true
}

// TTL returns the remaining lifetime of key in seconds, -1 if the key never
// expires and -2 if it is absent or already expired.
func (s *Store) TTL(key string) int64 {
	h, ok := s.byKey[key]
	if !ok {
		return -2
	}

	e := s.entries.get(h)
	if e.Expiration == 0 {
		return -1
	}
	now := s.now()
	if e.IsExpired(now) {
		return -2
	}
	return int64(e.Expiration - now)
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	return s.entries.len()
}

// Stats returns current statistics.
func (s *Store) Stats() Stats {
	st := s.stats
	st.Entries = s.entries.len()
	st.Expiring = s.expiry.len()
	return st
}
