// ABOUTME: Deal table mapping
// ABOUTME: Stores expected close dates as YYYY-MM-DD text
package db

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/store"
)

var _ store.Collection[models.Deal] = (*Table[models.Deal])(nil)

func NewDealTable(db *sql.DB) *Table[models.Deal] {
	return &Table[models.Deal]{
		db:   db,
		name: "deals",
		columns: []string{
			"id", "title", "value", "stage", "probability", "contact_id", "expected_close", "created_at",
		},
		values: func(d models.Deal) []any {
			return []any{d.ID, d.Title, d.Value, string(d.Stage), d.Probability, d.ContactID, d.ExpectedClose.String(), d.CreatedAt}
		},
		scan: scanDeal,
	}
}

func scanDeal(row scanner) (models.Deal, error) {
	var d models.Deal
	var stage, expected string

	err := row.Scan(&d.ID, &d.Title, &d.Value, &stage, &d.Probability, &d.ContactID, &expected, &d.CreatedAt)
	if err != nil {
		return models.Deal{}, err
	}

	d.Stage = models.Stage(stage)
	d.ExpectedClose, err = models.ParseDate(expected)
	if err != nil {
		return models.Deal{}, fmt.Errorf("deal %s: %w", d.ID, err)
	}
	return d, nil
}
