// Package metrics renders store statistics in the Prometheus text format.
package metrics

import (
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/alignecoderepos/ttlkv/internal/storage"
)

// Metric names exported by Families.
const (
	GetsTotal     = "ttlkv_gets_total"
	GetHitsTotal  = "ttlkv_get_hits_total"
	GetMissTotal  = "ttlkv_get_misses_total"
	SetsTotal     = "ttlkv_sets_total"
	RemovesTotal  = "ttlkv_removes_total"
	ScansTotal    = "ttlkv_scans_total"
	ExpiredTotal  = "ttlkv_expired_removed_total"
	EntriesGauge  = "ttlkv_entries"
	ExpiringGauge = "ttlkv_expiring_entries"
)

// Families converts st into metric families, counters first.
func Families(st storage.Stats) []*dto.MetricFamily {
	return []*dto.MetricFamily{
		counter(GetsTotal, "Get calls.", st.CmdGet),
		counter(GetHitsTotal, "Get calls that found a live entry.", st.GetHits),
		counter(GetMissTotal, "Get calls that found nothing or an expired entry.", st.GetMisses),
		counter(SetsTotal, "Set calls.", st.CmdSet),
		counter(RemovesTotal, "Remove calls.", st.CmdRemove),
		counter(ScansTotal, "Sorted range scans.", st.CmdScan),
		counter(ExpiredTotal, "Expired entries removed by reaping.", st.ExpiredTotal),
		gauge(EntriesGauge, "Stored entries, including expired ones not yet reaped.", st.Entries),
		gauge(ExpiringGauge, "Stored entries that carry a TTL.", st.Expiring),
	}
}

// WriteText writes st to w in the Prometheus text exposition format.
func WriteText(w io.Writer, st storage.Stats) error {
	for _, mf := range Families(st) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func counter(name, help string, v uint64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{
			Counter: &dto.Counter{Value: proto.Float64(float64(v))},
		}},
	}
}

func gauge(name, help string, v int) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Gauge: &dto.Gauge{Value: proto.Float64(float64(v))},
		}},
	}
}
