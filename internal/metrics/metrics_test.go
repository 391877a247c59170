package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alignecoderepos/ttlkv/internal/storage"
)

func TestWriteText_RoundTrip(t *testing.T) {
	st := storage.Stats{
		CmdGet:       10,
		GetHits:      7,
		GetMisses:    3,
		CmdSet:       4,
		ExpiredTotal: 2,
		Entries:      5,
		Expiring:     1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, st))
	assert.Contains(t, buf.String(), "# TYPE ttlkv_gets_total counter")

	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(buf.String()))
	require.NoError(t, err)

	assert.Len(t, mfs, 9)
	assert.Equal(t, 10.0, mfs[GetsTotal].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 3.0, mfs[GetMissTotal].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, mfs[ExpiredTotal].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 5.0, mfs[EntriesGauge].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1.0, mfs[ExpiringGauge].GetMetric()[0].GetGauge().GetValue())
}
