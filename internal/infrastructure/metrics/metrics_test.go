package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	if m.LoansCreated == nil || m.HTTPRequests == nil || m.LoanErrors == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.LoansCreated.Inc()
	m.LoanErrors.WithLabelValues("lend", "rate_too_high").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewWithRegistererIsolated(t *testing.T) {
	first := NewWithRegisterer(prometheus.NewRegistry())
	second := NewWithRegisterer(prometheus.NewRegistry())

	first.LoansRepaid.Inc()
	first.LoansRepaid.Inc()

	if got := testutil.ToFloat64(first.LoansRepaid); got != 2 {
		t.Fatalf("expected 2 repaid loans, got %v", got)
	}
	if got := testutil.ToFloat64(second.LoansRepaid); got != 0 {
		t.Fatalf("expected isolated registry, got %v", got)
	}
}
