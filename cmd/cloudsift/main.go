// Cloudsift scans cloud resource access controls against
// administrator-authored policy rules and reports every grant that
// violates policy.
//
// Usage:
//
//	# Run one scan with the default configuration
//	cloudsift scan
//
//	# Run with a custom configuration file
//	cloudsift scan --config /etc/cloudsift/config.yaml
//
//	# Run on a schedule, rebuilding the rule book on rules-file edits
//	cloudsift scan --schedule "0 3 * * *" --watch
//
//	# Check a rules file without scanning
//	cloudsift validate --rules rules.yaml
//
//	# Show version information
//	cloudsift version
package main

func main() {
	Execute()
}
