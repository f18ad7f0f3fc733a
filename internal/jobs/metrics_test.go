package jobmetrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	_ = m.Track("declarations:refresh_totals").End(nil)
	err := m.Track("declarations:refresh_totals").End(errors.New("boom"))
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected error to pass through, got %v", err)
	}
	m.AddItems("declarations:refresh_totals", 3)
	m.AddItems("declarations:refresh_totals", 0)

	expected := `
# HELP lmnp_jobs_failures_total Total failures observed for background jobs.
# TYPE lmnp_jobs_failures_total counter
lmnp_jobs_failures_total{job="declarations:refresh_totals"} 1
# HELP lmnp_job_declarations_total Declarations refreshed or warmed by background jobs.
# TYPE lmnp_job_declarations_total counter
lmnp_job_declarations_total{job="declarations:refresh_totals"} 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "lmnp_jobs_failures_total", "lmnp_job_declarations_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("declarations:refresh_totals", "success")); got != 1 {
		t.Fatalf("expected one success, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AddItems("job", 1)
	if err := m.Track("job").End(nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
