// ABOUTME: Contact table mapping
// ABOUTME: Encodes contacts to rows and back, keeping a null last_contact as nil
package db

import (
	"database/sql"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/store"
)

var _ store.Collection[models.Contact] = (*Table[models.Contact])(nil)

func NewContactTable(db *sql.DB) *Table[models.Contact] {
	return &Table[models.Contact]{
		db:   db,
		name: "contacts",
		columns: []string{
			"id", "name", "email", "phone", "company", "position", "status", "created_at", "last_contact",
		},
		values: func(c models.Contact) []any {
			var last sql.NullTime
			if c.LastContact != nil {
				last = sql.NullTime{Time: *c.LastContact, Valid: true}
			}
			return []any{c.ID, c.Name, c.Email, c.Phone, c.Company, c.Position, string(c.Status), c.CreatedAt, last}
		},
		scan: scanContact,
	}
}

func scanContact(row scanner) (models.Contact, error) {
	var c models.Contact
	var status string
	var last sql.NullTime

	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Position, &status, &c.CreatedAt, &last)
	if err != nil {
		return models.Contact{}, err
	}

	c.Status = models.ContactStatus(status)
	if last.Valid {
		t := last.Time
		c.LastContact = &t
	}
	return c, nil
}
