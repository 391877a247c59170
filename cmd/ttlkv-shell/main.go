package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/alignecoderepos/ttlkv/internal/clock"
	"github.com/alignecoderepos/ttlkv/internal/config"
	"github.com/alignecoderepos/ttlkv/internal/logging"
	"github.com/alignecoderepos/ttlkv/internal/shell"
	"github.com/alignecoderepos/ttlkv/internal/storage"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: ttlkv-shell [options] < commands")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	fmt.Fprintln(os.Stderr, "  ping")
	fmt.Fprintln(os.Stderr, "  get <key>")
	fmt.Fprintln(os.Stderr, "  mget <key1> <key2> ...")
	fmt.Fprintln(os.Stderr, "  set <key> <len> [EX <seconds>]   (followed by <len> bytes and a newline)")
	fmt.Fprintln(os.Stderr, "  mset <k1> <len1> <k2> <len2> ... (followed by the concatenated values)")
	fmt.Fprintln(os.Stderr, "  del <key>")
	fmt.Fprintln(os.Stderr, "  ttl <key>")
	fmt.Fprintln(os.Stderr, "  scan <count> [start]")
	fmt.Fprintln(os.Stderr, "  reap [limit]")
	fmt.Fprintln(os.Stderr, "  reapone")
	fmt.Fprintln(os.Stderr, "  len")
	fmt.Fprintln(os.Stderr, "  stats [prom]")
	fmt.Fprintln(os.Stderr, "  advance <seconds>                (with -fake-clock)")
	fmt.Fprintln(os.Stderr, "  quit")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	flag.PrintDefaults()
}

func main() {
	var (
		configPath = flag.String("config", "ttlkv.toml", "Path to configuration file")
		fakeClock  = flag.Bool("fake-clock", false, "Use a manual clock driven by ADVANCE")
		startUnix  = flag.Int64("start", 0, "Initial unix time of the fake clock (default: now)")
	)
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logging.Fatalf("Failed to load config: %v", err)
	}

	if err := logging.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		logging.Fatalf("Failed to init logger: %v", err)
	}
	defer logging.CloseLogger()

	var clk clock.Clock = clock.System{}
	if *fakeClock {
		start := time.Now()
		if *startUnix != 0 {
			start = time.Unix(*startUnix, 0)
		}
		clk = clock.NewFake(start)
	}

	store := storage.New(cfg.SeedRecords(), clk)
	logging.Debugf("Shell ready with %d seeded entries", store.Len())

	if err := shell.New(cfg, store, clk).Run(os.Stdin, os.Stdout); err != nil {
		logging.Errorf("Shell error: %v", err)
		os.Exit(1)
	}
}
