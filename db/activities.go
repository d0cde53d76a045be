// ABOUTME: Activity table mapping
// ABOUTME: An empty deal_id means the activity is not attached to a deal
package db

import (
	"database/sql"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/store"
)

var _ store.Collection[models.Activity] = (*Table[models.Activity])(nil)

func NewActivityTable(db *sql.DB) *Table[models.Activity] {
	return &Table[models.Activity]{
		db:   db,
		name: "activities",
		columns: []string{
			"id", "type", "contact_id", "deal_id", "description", "date", "duration",
		},
		values: func(a models.Activity) []any {
			return []any{a.ID, string(a.Type), a.ContactID, a.DealID, a.Description, a.Date, a.Duration}
		},
		scan: scanActivity,
	}
}

func scanActivity(row scanner) (models.Activity, error) {
	var a models.Activity
	var typ string

	err := row.Scan(&a.ID, &typ, &a.ContactID, &a.DealID, &a.Description, &a.Date, &a.Duration)
	if err != nil {
		return models.Activity{}, err
	}
	a.Type = models.ActivityType(typ)
	return a, nil
}
