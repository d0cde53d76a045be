// ABOUTME: Database connection management and initialization
// ABOUTME: Opens an in-process SQLite database that lives only as long as the process
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/crmdash/mockdata"
	"github.com/harperreed/crmdash/store"
)

// OpenDatabase opens a private in-memory SQLite database and creates the schema.
func OpenDatabase() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is a separate database, so pin the pool to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// NewSet seeds database and returns SQL-backed collections over it.
func NewSet(database *sql.DB, seed mockdata.Seed) (*store.Set, error) {
	contacts := NewContactTable(database)
	deals := NewDealTable(database)
	activities := NewActivityTable(database)

	// Seeds are appended so the first record in the file is shown first.
	for _, c := range seed.Contacts {
		if err := contacts.insert(c, appendSeq); err != nil {
			return nil, fmt.Errorf("failed to seed contact %s: %w", c.ID, err)
		}
	}
	for _, d := range seed.Deals {
		if err := deals.insert(d, appendSeq); err != nil {
			return nil, fmt.Errorf("failed to seed deal %s: %w", d.ID, err)
		}
	}
	for _, a := range seed.Activities {
		if err := activities.insert(a, appendSeq); err != nil {
			return nil, fmt.Errorf("failed to seed activity %s: %w", a.ID, err)
		}
	}

	return &store.Set{
		Contacts:   contacts,
		Deals:      deals,
		Activities: activities,
	}, nil
}
