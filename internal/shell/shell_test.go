package shell

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alignecoderepos/ttlkv/internal/clock"
	"github.com/alignecoderepos/ttlkv/internal/config"
	"github.com/alignecoderepos/ttlkv/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(records ...storage.Record) (*Shell, *clock.Fake) {
	clk := clock.NewFake(time.Unix(1_700_000_000, 0))
	cfg := config.DefaultConfig()
	cfg.MaxKeyBytes = 16
	cfg.MaxValueBytes = 8
	cfg.ReapBatch = 2
	return New(cfg, storage.New(records, clk), clk), clk
}

func run(t *testing.T, sh *Shell, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, sh.Run(strings.NewReader(input), &out))
	return out.String()
}

func TestShell_SetGetDel(t *testing.T) {
	sh, _ := newTestShell()

	out := run(t, sh, "SET key1 6\r\nvalue1\r\nGET key1\r\nDEL key1\r\nDEL key1\r\nGET key1\r\n")
	assert.Equal(t,
		"OK\r\n"+
			"VALUE 6\r\nvalue1\r\n"+
			"DELETED 1\r\n"+
			"DELETED 0\r\n"+
			"NOT_FOUND\r\n",
		out)
}

func TestShell_SetWithTTL(t *testing.T) {
	sh, _ := newTestShell()

	out := run(t, sh, "SET k 1 EX 5\nv\nTTL k\nADVANCE 5\nGET k\nTTL k\nLEN\n")
	assert.Equal(t,
		"OK\r\n"+
			"5\r\n"+
			"OK\r\n"+
			"NOT_FOUND\r\n"+
			"-2\r\n"+
			"1\r\n",
		out)
}

func TestShell_Scan(t *testing.T) {
	sh, _ := newTestShell(
		storage.Record{Key: "a", Value: []byte("1")},
		storage.Record{Key: "b", Value: []byte("2"), TTL: 5},
		storage.Record{Key: "c", Value: []byte("3")},
		storage.Record{Key: "d", Value: []byte("4")},
	)

	out := run(t, sh, "ADVANCE 6\nSCAN 3 a\nSCAN 0\n")
	assert.Equal(t,
		"OK\r\n"+
			"ITEMS 3\r\n"+
			"ITEM a 1\r\n1\r\n"+
			"ITEM c 1\r\n3\r\n"+
			"ITEM d 1\r\n4\r\n"+
			"ITEMS 0\r\n",
		out)
}

func TestShell_Reap(t *testing.T) {
	sh, _ := newTestShell(
		storage.Record{Key: "permanent", Value: []byte("value")},
		storage.Record{Key: "expires1", Value: []byte("value1"), TTL: 5},
		storage.Record{Key: "expires2", Value: []byte("value2"), TTL: 10},
		storage.Record{Key: "expires3", Value: []byte("value3"), TTL: 10},
	)

	out := run(t, sh, "REAPONE\nADVANCE 6\nREAPONE\nADVANCE 5\nREAP\nREAP\n")
	assert.Equal(t,
		"NOT_FOUND\r\n"+
			"OK\r\n"+
			"ITEM expires1 6\r\nvalue1\r\n"+
			"OK\r\n"+
			"ITEMS 2\r\n"+
			"ITEM expires2 6\r\nvalue2\r\n"+
			"ITEM expires3 6\r\nvalue3\r\n"+
			"ITEMS 0\r\n",
		out)
}

func TestShell_MSetMGet(t *testing.T) {
	sh, _ := newTestShell()

	out := run(t, sh, "MSET a 2 b 3\r\nxxyyy\r\nMGET a missing b\r\n")
	assert.Equal(t,
		"OK 2\r\n"+
			"ITEM a 2\r\nxx\r\n"+
			"NOT_FOUND missing\r\n"+
			"ITEM b 3\r\nyyy\r\n",
		out)
}

func TestShell_Limits(t *testing.T) {
	sh, _ := newTestShell()

	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"key too large", "SET aaaaaaaaaaaaaaaaa 1\nv\n", "ERR TOOLARGE"},
		{"value too large", "SET k 9\n123456789\n", "ERR TOOLARGE"},
		{"key with control char", "SET k\x01 1\nv\n", "ERR BADKEY"},
		{"negative ttl", "SET k 1 EX -1\nv\n", "ERR BADREQ"},
		{"bad ttl", "SET k 1 EX soon\nv\n", "ERR BADREQ"},
		{"unknown option", "SET k 1 NX\nv\n", "ERR BADREQ"},
		{"negative count", "SCAN -1\n", "ERR BADREQ"},
		{"unknown command", "FLUSH\n", "ERR BADREQ"},
		{"get arity", "GET\n", "ERR BADREQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, sh, tt.input)
			assert.True(t, strings.HasPrefix(out, tt.code), out)
		})
	}

	assert.Equal(t, 0, sh.store.Len())
}

func TestShell_OversizedPayloadLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"huge SET length", "SET k 9223372036854775807\nx\n"},
		{"SET length beyond int64", "SET k 99999999999999999999\nx\n"},
		{"SET just over limit", "SET k 9 EX 10\n123456789\n"},
		{"MSET lengths overflow", "MSET a 9223372036854775807 b 9223372036854775807\nx\n"},
		{"MSET total over limit", "MSET a 5 b 5\n1234567890\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, _ := newTestShell()

			out := run(t, sh, tt.input+"PING\n")
			assert.Equal(t, "ERR TOOLARGE value too large\r\nPONG\r\n", out)
			assert.Equal(t, 0, sh.store.Len())
		})
	}
}

func TestShell_Stats(t *testing.T) {
	sh, _ := newTestShell(storage.Record{Key: "a", Value: []byte("1"), TTL: 5})

	out := run(t, sh, "GET a\nGET b\nSTATS\n")
	assert.Contains(t, out, "keys=1\r\n")
	assert.Contains(t, out, "expiring_keys=1\r\n")
	assert.Contains(t, out, "get_hits=1\r\n")
	assert.Contains(t, out, "get_misses=1\r\n")
	assert.True(t, strings.HasSuffix(out, "END\r\n"))

	out = run(t, sh, "STATS PROM\n")
	assert.Contains(t, out, "ttlkv_gets_total 2\n")
	assert.Contains(t, out, "ttlkv_entries 1\n")
	assert.True(t, strings.HasSuffix(out, "END\r\n"))
}

func TestShell_AdvanceRequiresFakeClock(t *testing.T) {
	cfg := config.DefaultConfig()
	sh := New(cfg, storage.New(nil, clock.System{}), clock.System{})

	out := run(t, sh, "ADVANCE 10\n")
	assert.Equal(t, "ERR NOCLOCK ADVANCE requires a fake clock\r\n", out)
}

func TestShell_QuitStopsProcessing(t *testing.T) {
	sh, _ := newTestShell()

	out := run(t, sh, "PING\nQUIT\nSET k 1\nv\n")
	assert.Equal(t, "PONG\r\nOK\r\n", out)
	assert.Equal(t, 0, sh.store.Len())
}

func TestShell_WithSyncStore(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	sh := New(config.DefaultConfig(), storage.NewSync(nil, clk), clk)

	out := run(t, sh, "SET k 2\nhi\nGET k\n")
	assert.Equal(t, "OK\r\nVALUE 2\r\nhi\r\n", out)
}

func TestValidateKey(t *testing.T) {
	validKeys := []string{
		"a",
		"test_key",
		"key-with-dash",
		"key.with.dots",
		"user:1234",
		"namespace/resource",
		"αβγ",
		"",
	}
	for _, key := range validKeys {
		assert.NoError(t, validateKey(key), "key %q should be valid", key)
	}

	invalidKeys := []string{
		"key with space",
		"key\x00null",
		"key\x09tab",
		"key\x1Besc",
		"key\x7Fdel",
	}
	for _, key := range invalidKeys {
		assert.Equal(t, ErrKeyInvalid, validateKey(key), "key %q should be invalid", key)
	}
}
