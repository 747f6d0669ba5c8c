package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cloudsift/cloudsift/pkg/audit"
	"github.com/cloudsift/cloudsift/pkg/bigquery"
	"github.com/cloudsift/cloudsift/pkg/resource"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id            TEXT PRIMARY KEY,
	started_at    TIMESTAMP NOT NULL,
	completed_at  TIMESTAMP NOT NULL,
	resources     INTEGER NOT NULL,
	entries       INTEGER NOT NULL,
	violations    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS violations (
	id             TEXT PRIMARY KEY,
	scan_id        TEXT NOT NULL REFERENCES scans(id),
	resource_type  TEXT NOT NULL,
	resource_id    TEXT NOT NULL,
	full_name      TEXT NOT NULL,
	rule_name      TEXT NOT NULL,
	rule_index     INTEGER NOT NULL,
	violation_type TEXT NOT NULL,
	dataset_id     TEXT NOT NULL,
	role           TEXT NOT NULL,
	special_group  TEXT NOT NULL,
	user_email     TEXT NOT NULL,
	domain         TEXT NOT NULL,
	group_email    TEXT NOT NULL,
	view_json      TEXT NOT NULL,
	resource_data  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_violations_scan ON violations(scan_id);
CREATE INDEX IF NOT EXISTS idx_violations_rule ON violations(rule_name);
`

// SQLiteStore persists scans and violations in a SQLite database.
// The database uses WAL mode; SQLite supports a single writer, so the
// connection pool is capped at one connection.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveScan implements Store. The scan row and its violations are
// written in one transaction; a failure leaves no partial scan behind.
func (s *SQLiteStore) SaveScan(ctx context.Context, scan ScanRecord, violations []audit.Violation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (id, started_at, completed_at, resources, entries, violations)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.StartedAt.UTC(), scan.CompletedAt.UTC(),
		scan.Resources, scan.Entries, scan.Violations,
	)
	if err != nil {
		return fmt.Errorf("inserting scan %q: %w", scan.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO violations (
			id, scan_id, resource_type, resource_id, full_name,
			rule_name, rule_index, violation_type, dataset_id, role,
			special_group, user_email, domain, group_email, view_json,
			resource_data
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing violation insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range violations {
		viewJSON, err := json.Marshal(v.View)
		if err != nil {
			return fmt.Errorf("encoding view for rule %q: %w", v.RuleName, err)
		}

		_, err = stmt.ExecContext(ctx,
			uuid.New().String(), scan.ID, string(v.ResourceType), v.ResourceID,
			v.FullName, v.RuleName, v.RuleIndex, v.ViolationType,
			v.DatasetID, v.Role, v.SpecialGroup, v.UserEmail,
			v.Domain, v.GroupEmail, string(viewJSON), v.ResourceData,
		)
		if err != nil {
			return fmt.Errorf("inserting violation for rule %q: %w", v.RuleName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing scan %q: %w", scan.ID, err)
	}
	return nil
}

// ListScans implements Store.
func (s *SQLiteStore) ListScans(ctx context.Context) ([]ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, completed_at, resources, entries, violations
		 FROM scans ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var scans []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var started, completed time.Time
		if err := rows.Scan(&rec.ID, &started, &completed, &rec.Resources, &rec.Entries, &rec.Violations); err != nil {
			return nil, fmt.Errorf("scanning scan row: %w", err)
		}
		rec.StartedAt, rec.CompletedAt = started, completed
		scans = append(scans, rec)
	}
	return scans, rows.Err()
}

// ListViolations implements Store.
func (s *SQLiteStore) ListViolations(ctx context.Context, scanID string) ([]audit.Violation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT resource_type, resource_id, full_name, rule_name, rule_index,
		        violation_type, dataset_id, role, special_group, user_email,
		        domain, group_email, view_json, resource_data
		 FROM violations WHERE scan_id = ? ORDER BY rowid`, scanID)
	if err != nil {
		return nil, fmt.Errorf("querying violations for scan %q: %w", scanID, err)
	}
	defer rows.Close()

	var violations []audit.Violation
	for rows.Next() {
		var v audit.Violation
		var resourceType, viewJSON string
		err := rows.Scan(
			&resourceType, &v.ResourceID, &v.FullName, &v.RuleName,
			&v.RuleIndex, &v.ViolationType, &v.DatasetID, &v.Role,
			&v.SpecialGroup, &v.UserEmail, &v.Domain, &v.GroupEmail,
			&viewJSON, &v.ResourceData,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning violation row: %w", err)
		}
		v.ResourceType = resource.Type(resourceType)

		var view bigquery.TableRef
		if err := json.Unmarshal([]byte(viewJSON), &view); err != nil {
			return nil, fmt.Errorf("decoding view for rule %q: %w", v.RuleName, err)
		}
		v.View = view
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
