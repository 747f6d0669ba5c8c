// Package storage persists scan results and the violations they
// found.
//
// Two backends implement the Store interface: an in-memory store for
// tests and one-shot scans that only report to stdout, and a SQLite
// store for durable audit history across scanner runs.
package storage
