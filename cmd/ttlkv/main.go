package main

import (
	"flag"
	"fmt"

	"github.com/alignecoderepos/ttlkv/internal/clock"
	"github.com/alignecoderepos/ttlkv/internal/config"
	"github.com/alignecoderepos/ttlkv/internal/logging"
	"github.com/alignecoderepos/ttlkv/internal/storage"
)

// defaultSeed is used when the config file has no [[seed]] records.
var defaultSeed = []storage.Record{
	{Key: "key1", Value: []byte("value1"), TTL: 0},    // never expires
	{Key: "key2", Value: []byte("value2"), TTL: 3600}, // one hour
	{Key: "key3", Value: []byte("value3"), TTL: 60},   // one minute
}

func main() {
	var (
		configPath string
		rangeStart string
		rangeCount uint
	)
	flag.StringVar(&configPath, "config", "ttlkv.toml", "Path to configuration file")
	flag.StringVar(&rangeStart, "from", "key", "First key of the sorted listing")
	flag.UintVar(&rangeCount, "count", 10, "Number of pairs in the sorted listing")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		logging.Fatalf("Failed to init logger: %v", err)
	}
	defer logging.CloseLogger()

	seed := cfg.SeedRecords()
	if len(seed) == 0 {
		seed = defaultSeed
	}

	store := storage.New(seed, clock.System{})
	logging.Infof("Loaded %d entries", store.Len())

	store.Set("new_key", []byte("new_value"), 300)

	if value, ok := store.Get("key1"); ok {
		fmt.Printf("Found: %s\n", value)
	}

	for _, p := range store.GetManySorted(rangeStart, uint32(rangeCount)) {
		fmt.Printf("%s = %s\n", p.Key, p.Value)
	}

	for {
		batch := store.RemoveExpired(cfg.ReapBatch)
		if len(batch) == 0 {
			break
		}
		for _, p := range batch {
			fmt.Printf("Removed expired entry: %s\n", p.Key)
		}
	}

	st := store.Stats()
	logging.Infof("Done: %d entries, %d expiring, %d reaped", st.Entries, st.Expiring, st.ExpiredTotal)
}
