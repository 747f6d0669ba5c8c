// Package bigquery holds the BigQuery dataset access-control types the
// scanner evaluates against policy.
//
// An AccessControl is one entry of a dataset's access list: who (a
// user, group, domain, or special group) holds which role on which
// dataset. Entries arrive as raw API bindings in inventory dumps and
// are decoded into the flat field set the rules engine matches on.
package bigquery
