package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alignecoderepos/ttlkv/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStore_ConcurrentAccess(t *testing.T) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	ss := NewSync(nil, clk)

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d-%03d", w, i)
				ss.Set(key, []byte(key), uint32(i%3))
				v, ok := ss.Get(key)
				assert.True(t, ok)
				assert.Equal(t, []byte(key), v)
				ss.GetManySorted(key, 5)
				if i%4 == 0 {
					ss.Remove(key)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker*3/4, ss.Len())

	clk.Advance(time.Hour)
	removed := ss.RemoveExpired(0)
	assert.NotEmpty(t, removed)

	stats := ss.Stats()
	assert.Equal(t, uint64(workers*perWorker), stats.CmdSet)
	assert.Equal(t, 0, stats.Expiring)
	assertConsistent(t, ss.store)
}

func TestSyncStore_Wrap(t *testing.T) {
	store, clk := newTestStore(rec("a", "1", 5))
	ss := Wrap(store)

	v, ok := ss.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)
	assert.Equal(t, int64(5), ss.TTL("a"))

	clk.Advance(5 * time.Second)
	p, ok := ss.RemoveOneExpiredEntry()
	require.True(t, ok)
	assert.Equal(t, "a", p.Key)
	assert.False(t, ss.Remove("a"))
}
