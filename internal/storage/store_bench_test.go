package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/alignecoderepos/ttlkv/internal/clock"
)

func benchKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("key:%08d", i)
	}
	return keys
}

func BenchmarkStore_Set(b *testing.B) {
	store := New(nil, clock.NewFake(time.Unix(0, 0)))
	keys := benchKeys(10000)
	value := make([]byte, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Set(keys[i%len(keys)], value, uint32(i%60))
	}
}

func BenchmarkStore_Get(b *testing.B) {
	store := New(nil, clock.NewFake(time.Unix(0, 0)))
	keys := benchKeys(10000)
	for _, k := range keys {
		store.Set(k, []byte("value"), 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Get(keys[i%len(keys)])
	}
}

func BenchmarkStore_GetManySorted(b *testing.B) {
	store := New(nil, clock.NewFake(time.Unix(0, 0)))
	keys := benchKeys(10000)
	for _, k := range keys {
		store.Set(k, []byte("value"), 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.GetManySorted(keys[i%len(keys)], 50)
	}
}

func BenchmarkStore_SetReap(b *testing.B) {
	clk := clock.NewFake(time.Unix(0, 0))
	store := New(nil, clk)
	keys := benchKeys(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Set(keys[i%len(keys)], []byte("v"), 1)
		if i%len(keys) == len(keys)-1 {
			clk.Advance(time.Second)
			store.RemoveExpired(0)
		}
	}
}
