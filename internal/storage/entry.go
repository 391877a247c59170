package storage

// Entry is a single stored record. Key is fixed once the entry is inserted;
// Value and Expiration may be rewritten in place by Set.
type Entry struct {
	Key        string
	Value      []byte
	Expiration uint64 // unix seconds, 0 means no expiry
}

// IsExpired reports whether the entry is expired at now (unix seconds).
func (e *Entry) IsExpired(now uint64) bool {
	return e.Expiration != 0 && now >= e.Expiration
}

// expirationAt converts a ttl in seconds into an absolute expiration.
func expirationAt(now uint64, ttl uint32) uint64 {
	if ttl == 0 {
		return 0
	}
	return now + uint64(ttl)
}

// Record is one element of the initial batch passed to New.
type Record struct {
	Key   string
	Value []byte
	TTL   uint32 // seconds, 0 means no expiry
}

// Pair is a key/value copy handed back to callers.
type Pair struct {
	Key   string
	Value []byte
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
