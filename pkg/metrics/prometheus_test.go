package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordFetched("AAPL", 250)
	r.RecordFetched("AAPL", 10)
	r.RecordSkipped("XYZ")
	r.RecordCleanRows(1234)
	r.RecordFoldAccuracy(3, 0.61)
	r.RecordError("sink_kafka")
	r.RecordLatency("fold", 1.5)

	if v := testutil.ToFloat64(r.fetched.WithLabelValues("AAPL")); v != 260 {
		t.Fatalf("fetched = %v", v)
	}
	if v := testutil.ToFloat64(r.skipped.WithLabelValues("XYZ")); v != 1 {
		t.Fatalf("skipped = %v", v)
	}
	if v := testutil.ToFloat64(r.cleanRows); v != 1234 {
		t.Fatalf("clean rows = %v", v)
	}
	if v := testutil.ToFloat64(r.foldAccuracy.WithLabelValues("3")); v != 0.61 {
		t.Fatalf("fold accuracy = %v", v)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
}
