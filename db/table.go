// ABOUTME: Generic SQLite-backed implementation of store.Collection
// ABOUTME: Each entity table supplies its columns plus row encode and decode funcs
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/crmdash/store"
)

type scanner interface {
	Scan(dest ...any) error
}

// Table stores one entity type in a SQLite table ordered by seq.
type Table[T store.Record[T]] struct {
	db      *sql.DB
	name    string
	columns []string // id first
	values  func(T) []any
	scan    func(scanner) (T, error)
}

func (t *Table[T]) selectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.columns, ", "), t.name)
}

func (t *Table[T]) All() ([]T, error) {
	rows, err := t.db.Query(t.selectSQL() + " ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row: %w", t.name, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (t *Table[T]) Find(id string) (T, bool, error) {
	rec, err := t.scan(t.db.QueryRow(t.selectSQL()+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("failed to get %s %s: %w", t.name, id, err)
	}
	return rec, true, nil
}

func (t *Table[T]) Prepend(rec T) error {
	return t.insert(rec, prependSeq)
}

func (t *Table[T]) insert(rec T, mode seqMode) error {
	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	seq, err := nextSeq(tx, t.name, mode)
	if err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)+1), ", ")
	query := fmt.Sprintf("INSERT INTO %s (seq, %s) VALUES (%s)",
		t.name, strings.Join(t.columns, ", "), placeholders)

	args := append([]any{seq}, t.values(rec)...)
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}
	return tx.Commit()
}

func (t *Table[T]) Replace(rec T) (bool, error) {
	// columns[0] is id and is never rewritten.
	sets := make([]string, 0, len(t.columns)-1)
	for _, col := range t.columns[1:] {
		sets = append(sets, col+" = ?")
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, strings.Join(sets, ", "))

	values := t.values(rec)
	args := append(values[1:len(values):len(values)], rec.EntityID())
	res, err := t.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update %s %s: %w", t.name, rec.EntityID(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *Table[T]) Remove(id string) (bool, error) {
	res, err := t.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s %s: %w", t.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *Table[T]) Len() (int, error) {
	var n int
	err := t.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t.name)).Scan(&n)
	return n, err
}
