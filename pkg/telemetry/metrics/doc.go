// Package metrics exposes the scanner's Prometheus metrics.
//
// Metrics:
//   - <ns>_scans_total: completed scans by outcome
//   - <ns>_scan_duration_seconds: scan duration histogram
//   - <ns>_resources_scanned_total: inventory resources walked
//   - <ns>_violations_total: violations found, by rule name
//   - <ns>_rules_loaded: compiled rules in the installed rule book
package metrics
