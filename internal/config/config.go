package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/alignecoderepos/ttlkv/internal/logging"
	"github.com/alignecoderepos/ttlkv/internal/storage"
)

var (
	ErrInvalidLimit = errors.New("limit must be positive")
	ErrSeedKeySize  = errors.New("seed key exceeds max_key_bytes")
)

type Config struct {
	// Limits enforced by the shell before calling into the store
	MaxKeyBytes   int `toml:"max_key_bytes" yaml:"max_key_bytes"`
	MaxValueBytes int `toml:"max_value_bytes" yaml:"max_value_bytes"`

	// Expiry
	ReapBatch int `toml:"reap_batch" yaml:"reap_batch"`

	// Logging
	LogLevel           string `toml:"log_level" yaml:"log_level"`
	LogFile            string `toml:"log_file" yaml:"log_file"`
	SlowlogThresholdMs int    `toml:"slowlog_threshold_ms" yaml:"slowlog_threshold_ms"`

	// Initial batch loaded at construction
	Seed []SeedEntry `toml:"seed" yaml:"seed"`
}

// SeedEntry is one record of the initial batch. TTL is in seconds, 0 means
// the entry never expires.
type SeedEntry struct {
	Key   string `toml:"key" yaml:"key"`
	Value string `toml:"value" yaml:"value"`
	TTL   uint32 `toml:"ttl" yaml:"ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxKeyBytes:        256,
		MaxValueBytes:      16 * 1024 * 1024, // 16 MiB
		ReapBatch:          1000,
		LogLevel:           "INFO",
		LogFile:            "",
		SlowlogThresholdMs: 50,
	}
}

// LoadConfig reads path as TOML, or as YAML when it ends in .yaml or .yml.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Use defaults if config file doesn't exist
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml %q: %w", path, err)
		}
	default:
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse toml %q: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}

	return cfg, nil
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if c.MaxKeyBytes <= 0 {
		return fmt.Errorf("max_key_bytes: %w", ErrInvalidLimit)
	}
	if c.MaxValueBytes <= 0 {
		return fmt.Errorf("max_value_bytes: %w", ErrInvalidLimit)
	}
	if c.ReapBatch < 0 {
		return fmt.Errorf("reap_batch %d must not be negative", c.ReapBatch)
	}
	if c.SlowlogThresholdMs < 0 {
		return fmt.Errorf("slowlog_threshold_ms %d must not be negative", c.SlowlogThresholdMs)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for i, s := range c.Seed {
		if len(s.Key) > c.MaxKeyBytes {
			return fmt.Errorf("seed[%d]: %w", i, ErrSeedKeySize)
		}
	}
	return nil
}

// SeedRecords converts the seed section into the store's initial batch.
func (c *Config) SeedRecords() []storage.Record {
	records := make([]storage.Record, 0, len(c.Seed))
	for _, s := range c.Seed {
		records = append(records, storage.Record{
			Key:   s.Key,
			Value: []byte(s.Value),
			TTL:   s.TTL,
		})
	}
	return records
}

func (c *Config) SlowlogThreshold() time.Duration {
	return time.Duration(c.SlowlogThresholdMs) * time.Millisecond
}
