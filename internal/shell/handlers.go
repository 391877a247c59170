package shell

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alignecoderepos/ttlkv/internal/clock"
	"github.com/alignecoderepos/ttlkv/internal/metrics"
	"github.com/alignecoderepos/ttlkv/internal/protocol"
)

// handleGet handles GET <key>
func (s *Shell) handleGet(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) != 1 {
		protocol.WriteError(w, "BADREQ", "GET requires 1 argument")
		return
	}

	value, ok := s.store.Get(cmd.Args[0])
	if !ok {
		protocol.WriteNotFound(w)
		return
	}
	protocol.WriteValue(w, value)
}

// handleMGet handles MGET <key> [key ...]
func (s *Shell) handleMGet(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) == 0 {
		protocol.WriteError(w, "BADREQ", "MGET requires at least 1 argument")
		return
	}

	for _, key := range cmd.Args {
		value, ok := s.store.Get(key)
		if !ok {
			protocol.WriteNotFoundKey(w, key)
			continue
		}
		protocol.WriteItem(w, key, value)
	}
}

// handleSet handles SET <key> <len> [EX <seconds>]
func (s *Shell) handleSet(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) < 2 {
		protocol.WriteError(w, "BADREQ", "SET requires at least 2 arguments")
		return
	}

	key := cmd.Args[0]
	if err := s.checkKey(key); err != nil {
		writeKeyError(w, err)
		return
	}
	if len(cmd.Payload) > s.config.MaxValueBytes {
		protocol.WriteError(w, "TOOLARGE", ErrValueTooLarge.Error())
		return
	}

	var ttl uint32
	i := 2 // Start after key and length
	for i < len(cmd.Args) {
		arg := strings.ToUpper(cmd.Args[i])
		switch arg {
		case "EX":
			if i+1 >= len(cmd.Args) {
				protocol.WriteError(w, "BADREQ", "EX requires value")
				return
			}
			secs, err := parseTTL(cmd.Args[i+1])
			if err != nil {
				protocol.WriteError(w, "BADREQ", err.Error())
				return
			}
			ttl = secs
			i += 2

		default:
			protocol.WriteError(w, "BADREQ", fmt.Sprintf("unknown option: %s", arg))
			return
		}
	}

	s.store.Set(key, cmd.Payload, ttl)
	protocol.WriteOK(w)
}

// handleMSet handles MSET k1 len1 k2 len2 ... Entries never expire.
func (s *Shell) handleMSet(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) == 0 || len(cmd.Args)%2 != 0 {
		protocol.WriteError(w, "BADREQ", "MSET requires even number of arguments")
		return
	}

	var keys []string
	var lengths []int
	for i := 0; i < len(cmd.Args); i += 2 {
		key := cmd.Args[i]
		if err := s.checkKey(key); err != nil {
			writeKeyError(w, err)
			return
		}
		length, err := strconv.Atoi(cmd.Args[i+1])
		if err != nil || length < 0 {
			protocol.WriteError(w, "BADREQ", "invalid length")
			return
		}
		if length > s.config.MaxValueBytes {
			protocol.WriteError(w, "TOOLARGE", ErrValueTooLarge.Error())
			return
		}
		keys = append(keys, key)
		lengths = append(lengths, length)
	}

	// A bad pair above rejects the whole command.
	offset := 0
	for i, key := range keys {
		value := cmd.Payload[offset : offset+lengths[i]]
		offset += lengths[i]
		s.store.Set(key, value, 0)
	}

	protocol.WriteOKCount(w, len(keys))
}

// handleDel handles DEL <key>
func (s *Shell) handleDel(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) != 1 {
		protocol.WriteError(w, "BADREQ", "DEL requires 1 argument")
		return
	}
	protocol.WriteDeleted(w, s.store.Remove(cmd.Args[0]))
}

// handleTTL handles TTL <key>
func (s *Shell) handleTTL(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) != 1 {
		protocol.WriteError(w, "BADREQ", "TTL requires 1 argument")
		return
	}
	protocol.WriteInteger(w, s.store.TTL(cmd.Args[0]))
}

// handleScan handles SCAN <count> [start]
func (s *Shell) handleScan(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) < 1 || len(cmd.Args) > 2 {
		protocol.WriteError(w, "BADREQ", "SCAN requires 1 or 2 arguments")
		return
	}

	count, err := strconv.ParseUint(cmd.Args[0], 10, 32)
	if err != nil {
		protocol.WriteError(w, "BADREQ", "invalid count")
		return
	}

	start := ""
	if len(cmd.Args) == 2 {
		start = cmd.Args[1]
	}

	pairs := s.store.GetManySorted(start, uint32(count))
	protocol.WriteItems(w, len(pairs))
	for _, p := range pairs {
		protocol.WriteItem(w, p.Key, p.Value)
	}
}

// handleReap handles REAP [limit]. Without a limit the configured batch
// size applies; 0 drains everything expired.
func (s *Shell) handleReap(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) > 1 {
		protocol.WriteError(w, "BADREQ", "REAP takes at most 1 argument")
		return
	}

	limit := s.config.ReapBatch
	if len(cmd.Args) == 1 {
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n < 0 {
			protocol.WriteError(w, "BADREQ", "invalid limit")
			return
		}
		limit = n
	}

	removed := s.store.RemoveExpired(limit)
	protocol.WriteItems(w, len(removed))
	for _, p := range removed {
		protocol.WriteItem(w, p.Key, p.Value)
	}
}

// handleReapOne handles REAPONE
func (s *Shell) handleReapOne(cmd *protocol.Command, w io.Writer) {
	if len(cmd.Args) != 0 {
		protocol.WriteError(w, "BADREQ", "REAPONE takes no arguments")
		return
	}

	p, ok := s.store.RemoveOneExpiredEntry()
	if !ok {
		protocol.WriteNotFound(w)
		return
	}
	protocol.WriteItem(w, p.Key, p.Value)
}

// handleStats handles STATS [PROM]
func (s *Shell) handleStats(cmd *protocol.Command, w io.Writer) {
	st := s.store.Stats()

	if len(cmd.Args) == 1 && strings.ToUpper(cmd.Args[0]) == "PROM" {
		if err := metrics.WriteText(w, st); err != nil {
			protocol.WriteError(w, "INTERNAL", err.Error())
			return
		}
		protocol.WriteEnd(w)
		return
	}
	if len(cmd.Args) != 0 {
		protocol.WriteError(w, "BADREQ", "unknown STATS format")
		return
	}

	protocol.WriteStat(w, "keys", strconv.Itoa(st.Entries))
	protocol.WriteStat(w, "expiring_keys", strconv.Itoa(st.Expiring))
	protocol.WriteStat(w, "cmd_get", strconv.FormatUint(st.CmdGet, 10))
	protocol.WriteStat(w, "get_hits", strconv.FormatUint(st.GetHits, 10))
	protocol.WriteStat(w, "get_misses", strconv.FormatUint(st.GetMisses, 10))
	protocol.WriteStat(w, "cmd_set", strconv.FormatUint(st.CmdSet, 10))
	protocol.WriteStat(w, "cmd_del", strconv.FormatUint(st.CmdRemove, 10))
	protocol.WriteStat(w, "cmd_scan", strconv.FormatUint(st.CmdScan, 10))
	protocol.WriteStat(w, "expired_total", strconv.FormatUint(st.ExpiredTotal, 10))
	protocol.WriteEnd(w)
}

// handleAdvance handles ADVANCE <seconds> on a fake clock
func (s *Shell) handleAdvance(cmd *protocol.Command, w io.Writer) {
	fake, ok := s.clock.(*clock.Fake)
	if !ok {
		protocol.WriteError(w, "NOCLOCK", "ADVANCE requires a fake clock")
		return
	}
	if len(cmd.Args) != 1 {
		protocol.WriteError(w, "BADREQ", "ADVANCE requires 1 argument")
		return
	}

	secs, err := strconv.ParseInt(cmd.Args[0], 10, 64)
	if err != nil || secs < 0 || secs > math.MaxInt64/int64(time.Second) {
		protocol.WriteError(w, "BADREQ", "invalid seconds")
		return
	}

	fake.Advance(time.Duration(secs) * time.Second)
	protocol.WriteOK(w)
}

// parseTTL parses a TTL in seconds. Negative values are rejected here since
// the store reserves 0 for "no expiry" and has no meaning for negatives.
func parseTTL(s string) (uint32, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL")
	}
	if n < 0 {
		return 0, fmt.Errorf("TTL must not be negative")
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("TTL too large")
	}
	return uint32(n), nil
}
