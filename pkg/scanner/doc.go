// Package scanner orchestrates compliance scans.
//
// A scan walks an inventory of resources, evaluates every
// access-control entry against the rules engine, persists the
// violations it finds, and records metrics. Scans run once or on a
// cron schedule; in scheduled mode the rules file can be watched so
// edits rebuild the rule book between runs.
package scanner
