// ABOUTME: Partial update types for CRM entities
// ABOUTME: Nil fields are left untouched; ID and CreatedAt cannot be patched
package models

import "time"

// ContactPatch is a shallow partial update of a Contact.
type ContactPatch struct {
	Name        *string
	Email       *string
	Phone       *string
	Company     *string
	Position    *string
	Status      *ContactStatus
	LastContact *time.Time
}

// Apply overwrites the fields of c that are set in p.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Position != nil {
		c.Position = *p.Position
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.LastContact != nil {
		last := *p.LastContact
		c.LastContact = &last
	}
}

// DealPatch is a shallow partial update of a Deal.
type DealPatch struct {
	Title         *string
	Value         *float64
	Stage         *Stage
	Probability   *int
	ContactID     *string
	ExpectedClose *Date
}

// DealStage builds a patch that only moves the deal to stage.
func DealStage(stage Stage) DealPatch {
	return DealPatch{Stage: &stage}
}

func (p DealPatch) Apply(d *Deal) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Value != nil {
		d.Value = *p.Value
	}
	if p.Stage != nil {
		d.Stage = *p.Stage
	}
	if p.Probability != nil {
		d.Probability = *p.Probability
	}
	if p.ContactID != nil {
		d.ContactID = *p.ContactID
	}
	if p.ExpectedClose != nil {
		d.ExpectedClose = *p.ExpectedClose
	}
}

// ActivityPatch is a shallow partial update of an Activity.
// Setting DealID to "" detaches the activity from its deal.
type ActivityPatch struct {
	Type        *ActivityType
	ContactID   *string
	DealID      *string
	Description *string
	Date        *time.Time
	Duration    *int
}

func (p ActivityPatch) Apply(a *Activity) {
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.ContactID != nil {
		a.ContactID = *p.ContactID
	}
	if p.DealID != nil {
		a.DealID = *p.DealID
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
	}
}
