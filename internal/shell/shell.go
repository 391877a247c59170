// Package shell executes text commands against a local store.
package shell

import (
	"bufio"
	"errors"
	"io"
	"time"

	"github.com/alignecoderepos/ttlkv/internal/clock"
	"github.com/alignecoderepos/ttlkv/internal/config"
	"github.com/alignecoderepos/ttlkv/internal/logging"
	"github.com/alignecoderepos/ttlkv/internal/protocol"
	"github.com/alignecoderepos/ttlkv/internal/storage"
)

var (
	ErrKeyTooLarge   = errors.New("key too large")
	ErrValueTooLarge = errors.New("value too large")
	ErrKeyInvalid    = errors.New("key contains invalid characters")
)

// Backend is the store surface the shell drives. Both *storage.Store and
// *storage.SyncStore satisfy it.
type Backend interface {
	Set(key string, value []byte, ttl uint32)
	Get(key string) ([]byte, bool)
	Remove(key string) bool
	GetManySorted(startKey string, count uint32) []storage.Pair
	RemoveOneExpiredEntry() (storage.Pair, bool)
	RemoveExpired(limit int) []storage.Pair
	TTL(key string) int64
	Len() int
	Stats() storage.Stats
}

// Shell reads commands, runs them against a Backend and writes replies.
type Shell struct {
	config *config.Config
	store  Backend
	clock  clock.Clock
}

// New creates a Shell. clk is only consulted by ADVANCE, which requires a
// *clock.Fake.
func New(cfg *config.Config, store Backend, clk clock.Clock) *Shell {
	return &Shell{
		config: cfg,
		store:  store,
		clock:  clk,
	}
}

// Run processes commands from r until EOF or QUIT.
func (s *Shell) Run(r io.Reader, w io.Writer) error {
	parser := protocol.NewParser(r, s.config.MaxValueBytes)
	writer := bufio.NewWriter(w)
	defer writer.Flush()

	for {
		cmd, err := parser.ParseCommand()
		if err != nil {
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			if errors.Is(err, protocol.ErrPayloadTooLarge) {
				protocol.WriteError(writer, "TOOLARGE", ErrValueTooLarge.Error())
				if err := writer.Flush(); err != nil {
					return err
				}
				continue
			}
			if !errors.Is(err, protocol.ErrInvalidCommand) &&
				!errors.Is(err, protocol.ErrInvalidArgs) &&
				!errors.Is(err, protocol.ErrInvalidPayload) {
				return err
			}
			protocol.WriteError(writer, "BADREQ", err.Error())
			if err := writer.Flush(); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		quit := s.Execute(cmd, writer)
		if err := writer.Flush(); err != nil {
			return err
		}

		if duration := time.Since(start); duration > s.config.SlowlogThreshold() {
			logging.Warnf("Slow command: %s %v took %v", cmd.Name, cmd.Args, duration)
		}

		if quit {
			return nil
		}
	}
}

// Execute runs a single command and reports whether the session should end.
func (s *Shell) Execute(cmd *protocol.Command, w io.Writer) bool {
	switch cmd.Name {
	case "PING":
		protocol.WritePong(w)
	case "GET":
		s.handleGet(cmd, w)
	case "MGET":
		s.handleMGet(cmd, w)
	case "SET":
		s.handleSet(cmd, w)
	case "MSET":
		s.handleMSet(cmd, w)
	case "DEL":
		s.handleDel(cmd, w)
	case "TTL":
		s.handleTTL(cmd, w)
	case "SCAN":
		s.handleScan(cmd, w)
	case "REAP":
		s.handleReap(cmd, w)
	case "REAPONE":
		s.handleReapOne(cmd, w)
	case "LEN":
		protocol.WriteInteger(w, int64(s.store.Len()))
	case "STATS":
		s.handleStats(cmd, w)
	case "ADVANCE":
		s.handleAdvance(cmd, w)
	case "QUIT", "EXIT":
		protocol.WriteOK(w)
		return true
	default:
		protocol.WriteError(w, "BADREQ", "unknown command")
	}
	return false
}

// validateKey checks if a key contains invalid characters (ASCII spaces or control chars)
func validateKey(key string) error {
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == 0x20 || c <= 0x1F || c == 0x7F {
			return ErrKeyInvalid
		}
	}
	return nil
}

// checkKey applies the key limits configured for this shell.
func (s *Shell) checkKey(key string) error {
	if len(key) > s.config.MaxKeyBytes {
		return ErrKeyTooLarge
	}
	return validateKey(key)
}

func writeKeyError(w io.Writer, err error) {
	switch err {
	case ErrKeyTooLarge:
		protocol.WriteError(w, "TOOLARGE", err.Error())
	default:
		protocol.WriteError(w, "BADKEY", err.Error())
	}
}
