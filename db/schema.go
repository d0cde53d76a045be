// ABOUTME: Database schema definitions
// ABOUTME: Handles SQLite table creation; seq orders rows newest first
package db

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	last_contact DATETIME
);

CREATE INDEX IF NOT EXISTS idx_contacts_seq ON contacts(seq);

CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL,
	title TEXT NOT NULL,
	value REAL NOT NULL DEFAULT 0,
	stage TEXT NOT NULL,
	probability INTEGER NOT NULL DEFAULT 0,
	contact_id TEXT NOT NULL DEFAULT '',
	expected_close TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_seq ON deals(seq);

CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	seq INTEGER NOT NULL,
	type TEXT NOT NULL,
	contact_id TEXT NOT NULL DEFAULT '',
	deal_id TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	date DATETIME NOT NULL,
	duration INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_activities_seq ON activities(seq);
`

// contact_id and deal_id are weak references: no FOREIGN KEY on purpose,
// deleting a contact leaves its deals and activities untouched.

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

type seqMode int

const (
	appendSeq seqMode = iota
	prependSeq
)

// nextSeq returns the seq for a new row in table. Must run inside tx.
func nextSeq(tx *sql.Tx, table string, mode seqMode) (int64, error) {
	agg := "MAX(seq) + 1"
	if mode == prependSeq {
		agg = "MIN(seq) - 1"
	}
	var seq sql.NullInt64
	if err := tx.QueryRow(fmt.Sprintf("SELECT %s FROM %s", agg, table)).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to compute %s order: %w", table, err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}
