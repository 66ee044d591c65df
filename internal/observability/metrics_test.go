package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/maintenance/rows", "200", 30*time.Millisecond)
	m.AddRowsServed("cache", 12)
	m.ObserveExport("ok", 3)
	m.ObserveExport("failed", 0)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`assetpm_api_requests_total{method="GET",route="/api/maintenance/rows",status="200"} 1.000000`,
		`assetpm_rows_served_total{source="cache"} 12.000000`,
		`assetpm_exports_total{status="failed"} 1.000000`,
		`assetpm_export_events_bucket{le="5"} 1`,
		`assetpm_export_events_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Second)
	m.AddRowsServed("db", 1)
	m.IncEventSubmitted("ok")
	m.ObserveExport("ok", 1)
	m.ApiInflightInc()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
}

func TestCounterVecValue(t *testing.T) {
	c := NewCounterVec("x_total", "x", []string{"op"})
	c.Inc("get")
	c.Add(2, "get")
	if got := c.Value("get"); got != 3 {
		t.Fatalf("value=%f", got)
	}
}
