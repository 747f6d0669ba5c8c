package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScannerMetrics tracks scan activity.
type ScannerMetrics struct {
	registry *prometheus.Registry

	scansTotal       *prometheus.CounterVec
	scanDuration     prometheus.Histogram
	resourcesScanned prometheus.Counter
	violationsTotal  *prometheus.CounterVec
	rulesLoaded      prometheus.Gauge
}

// NewScannerMetrics creates and registers the scanner metrics on a
// fresh registry. namespace prefixes every metric name; empty defaults
// to "cloudsift".
func NewScannerMetrics(namespace string) *ScannerMetrics {
	if namespace == "" {
		namespace = "cloudsift"
	}

	m := &ScannerMetrics{
		registry: prometheus.NewRegistry(),

		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Total number of completed scans",
			},
			[]string{"outcome"},
		),

		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_seconds",
				Help:      "Duration of a full scan in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
			},
		),

		resourcesScanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resources_scanned_total",
				Help:      "Total number of inventory resources walked",
			},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of policy violations found",
			},
			[]string{"rule_name"},
		),

		rulesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rules_loaded",
				Help:      "Number of compiled rules in the installed rule book",
			},
		),
	}

	m.registry.MustRegister(
		m.scansTotal,
		m.scanDuration,
		m.resourcesScanned,
		m.violationsTotal,
		m.rulesLoaded,
	)
	return m
}

// ObserveScan records one completed scan.
func (m *ScannerMetrics) ObserveScan(outcome string, duration time.Duration, resources int) {
	m.scansTotal.WithLabelValues(outcome).Inc()
	m.scanDuration.Observe(duration.Seconds())
	m.resourcesScanned.Add(float64(resources))
}

// ObserveViolation records one found violation.
func (m *ScannerMetrics) ObserveViolation(ruleName string) {
	m.violationsTotal.WithLabelValues(ruleName).Inc()
}

// SetRulesLoaded records the size of the installed rule book.
func (m *ScannerMetrics) SetRulesLoaded(n int) {
	m.rulesLoaded.Set(float64(n))
}

// Registry exposes the underlying registry, primarily for tests.
func (m *ScannerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *ScannerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
