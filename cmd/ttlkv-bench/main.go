package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alignecoderepos/ttlkv/internal/clock"
	"github.com/alignecoderepos/ttlkv/internal/metrics"
	"github.com/alignecoderepos/ttlkv/internal/storage"
)

// kv is the subset of the store the workers drive.
type kv interface {
	Set(key string, value []byte, ttl uint32)
	Get(key string) ([]byte, bool)
	GetManySorted(startKey string, count uint32) []storage.Pair
	RemoveExpired(limit int) []storage.Pair
	Stats() storage.Stats
}

func main() {
	var (
		operation   = flag.String("op", "set", "Operation to benchmark (set|get|mixed|scan)")
		duration    = flag.Duration("duration", 10*time.Second, "Test duration")
		workers     = flag.Int("workers", 1, "Number of goroutines; more than 1 shares the store behind a mutex")
		keySize     = flag.Int("key-size", 16, "Key size in bytes")
		valueSize   = flag.Int("value-size", 100, "Value size in bytes")
		keyspace    = flag.Int("keyspace", 10000, "Size of key space")
		ttl         = flag.Uint("ttl", 0, "TTL in seconds for written keys (0 = never expire)")
		scanCount   = flag.Uint("scan-count", 50, "Pairs per SCAN operation")
		reportTicks = flag.Duration("report", 1*time.Second, "Reporting interval")
		promOut     = flag.Bool("prom", false, "Print final store statistics in Prometheus text format")
	)
	flag.Parse()

	switch *operation {
	case "set", "get", "mixed", "scan":
	default:
		log.Fatalf("Unknown operation: %s", *operation)
	}
	if *workers < 1 || *keyspace < 1 {
		log.Fatalf("workers and keyspace must be positive")
	}

	fmt.Printf("ttlkv Benchmark Tool\n")
	fmt.Printf("====================\n")
	fmt.Printf("Operation: %s\n", *operation)
	fmt.Printf("Duration: %s\n", *duration)
	fmt.Printf("Workers: %d\n", *workers)
	fmt.Printf("Key size: %d bytes\n", *keySize)
	fmt.Printf("Value size: %d bytes\n", *valueSize)
	fmt.Printf("Key space: %d\n", *keyspace)
	fmt.Printf("TTL: %ds\n", *ttl)
	fmt.Printf("CPUs: %d\n", runtime.NumCPU())
	fmt.Printf("\n")

	keys := generateKeys(*keyspace, *keySize)
	value := generateValue(*valueSize)

	var store kv
	if *workers > 1 {
		store = storage.NewSync(nil, clock.System{})
	} else {
		store = storage.New(nil, clock.System{})
	}

	// Pre-populate for read benchmarks
	if *operation != "set" {
		fmt.Printf("Pre-populating %d keys...\n", *keyspace)
		for _, key := range keys {
			store.Set(key, value, uint32(*ttl))
		}
		fmt.Printf("Pre-population complete\n\n")
	}

	var (
		totalOps   int64
		misses     int64
		lastOps    int64
		startTime  = time.Now()
		lastReport = startTime
	)

	reportDone := make(chan struct{})
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		ticker := time.NewTicker(*reportTicks)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				now := time.Now()
				currentOps := atomic.LoadInt64(&totalOps)
				elapsed := now.Sub(lastReport).Seconds()

				fmt.Printf("Ops: %d (%.0f/sec), Misses: %d, Total: %d\n",
					currentOps-lastOps, float64(currentOps-lastOps)/elapsed, atomic.LoadInt64(&misses), currentOps)

				lastOps = currentOps
				lastReport = now

			case <-reportDone:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	stopCh := make(chan struct{})

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runWorker(workerID, store, *operation, keys, value, uint32(*ttl), uint32(*scanCount), stopCh, &totalOps, &misses)
		}(i)
	}

	time.Sleep(*duration)
	close(stopCh)
	wg.Wait()
	close(reportDone)
	<-reporterDone

	reaped := len(store.RemoveExpired(0))

	finalOps := atomic.LoadInt64(&totalOps)
	finalMisses := atomic.LoadInt64(&misses)
	totalDuration := time.Since(startTime).Seconds()

	fmt.Printf("\nBenchmark Results\n")
	fmt.Printf("=================\n")
	fmt.Printf("Total operations: %d\n", finalOps)
	fmt.Printf("Total misses: %d\n", finalMisses)
	fmt.Printf("Expired keys reaped: %d\n", reaped)
	fmt.Printf("Duration: %.2f seconds\n", totalDuration)
	if finalOps > 0 {
		fmt.Printf("Throughput: %.2f ops/sec\n", float64(finalOps)/totalDuration)
		fmt.Printf("Average latency: %.2f μs/op\n", totalDuration*1000000/float64(finalOps))
	}

	if *promOut {
		fmt.Println()
		if err := metrics.WriteText(os.Stdout, store.Stats()); err != nil {
			log.Fatalf("Failed to write metrics: %v", err)
		}
	}
}

func runWorker(workerID int, store kv, operation string, keys []string, value []byte, ttl, scanCount uint32, stopCh <-chan struct{}, totalOps, misses *int64) {
	// Spread workers across the key space
	keyIndex := workerID * len(keys) / 64 % len(keys)
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		key := keys[keyIndex]
		switch operation {
		case "set":
			store.Set(key, value, ttl)
		case "get":
			if _, ok := store.Get(key); !ok {
				atomic.AddInt64(misses, 1)
			}
		case "mixed":
			if keyIndex%2 == 0 {
				store.Set(key, value, ttl)
			} else if _, ok := store.Get(key); !ok {
				atomic.AddInt64(misses, 1)
			}
		case "scan":
			if len(store.GetManySorted(key, scanCount)) == 0 {
				atomic.AddInt64(misses, 1)
			}
		}

		atomic.AddInt64(totalOps, 1)
		keyIndex = (keyIndex + 1) % len(keys)
	}
}

func generateKeys(count, size int) []string {
	keys := make([]string, count)
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("key_%0*d", size-4, i)
		if len(key) > size {
			key = key[:size]
		} else {
			for len(key) < size {
				key += "x"
			}
		}
		keys[i] = key
	}
	return keys
}

func generateValue(size int) []byte {
	value := make([]byte, size)
	for i := 0; i < size; i++ {
		value[i] = byte('a' + (i % 26))
	}
	return value
}
