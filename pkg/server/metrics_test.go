package server

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/biotree/pkg/errors"
)

func TestMetricsHooks(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnMutation(ctx, "add_taxon", time.Millisecond, nil)
	m.OnMutation(ctx, "add_taxon", time.Millisecond, errors.New(errors.ErrCodeNodeNotFound, "x"))
	m.OnPersist(ctx, 128, nil)
	m.OnPersist(ctx, 0, context.DeadlineExceeded)
	m.OnRestore(ctx, "stored")
	m.OnStoreHit(ctx, "file")
	m.OnStoreMiss(ctx, "file")
	m.OnStoreSet(ctx, "file", 64)
	m.OnRequest(ctx, "GET", "/api/flow")

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"mutation ok", m.mutations.WithLabelValues("add_taxon", "ok"), 1},
		{"mutation failed", m.mutations.WithLabelValues("add_taxon", "NODE_NOT_FOUND"), 1},
		{"persist ok", m.persists.WithLabelValues("ok"), 1},
		{"persist error", m.persists.WithLabelValues("error"), 1},
		{"snapshot bytes", m.snapshotBytes, 128},
		{"restore", m.restores.WithLabelValues("stored"), 1},
		{"store hit", m.storeOps.WithLabelValues("file", "hit"), 1},
		{"store miss", m.storeOps.WithLabelValues("file", "miss"), 1},
		{"store written", m.storeWritten.WithLabelValues("file"), 64},
		{"in flight", m.inFlight.WithLabelValues("GET"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}

	m.OnResponse(ctx, "GET", "/api/flow", 200, time.Millisecond)
	if got := testutil.ToFloat64(m.inFlight.WithLabelValues("GET")); got != 0 {
		t.Errorf("in flight after response = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/flow", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestResultLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{errors.New(errors.ErrCodeInvalidJSON, "x"), "INVALID_JSON"},
		{context.Canceled, "error"},
	}
	for _, tt := range tests {
		if got := result(tt.err); got != tt.want {
			t.Errorf("result(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
