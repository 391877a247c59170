package storage

import (
	"github.com/alignecoderepos/ttlkv/internal/logging"
)

// RemoveExpired removes up to limit expired entries and returns them in
// removal order. A limit <= 0 drains every entry expired at call time.
// Nothing runs in the background; callers decide when to reap.
func (s *Store) RemoveExpired(limit int) []Pair {
	var removed []Pair
	for limit <= 0 || len(removed) < limit {
		p, ok := s.RemoveOneExpiredEntry()
		if !ok {
			break
		}
		removed = append(removed, p)
	}

	if len(removed) > 0 {
		logging.Debugf("Reaped %d expired keys, %d remaining", len(removed), s.entries.len())
	}
	return removed
}
