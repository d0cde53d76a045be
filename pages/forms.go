// ABOUTME: Default form payloads and required-field hints
// ABOUTME: Also holds the fixed payloads used by the dashboard quick-add actions
package pages

import (
	"strings"
	"time"

	"github.com/harperreed/crmdash/models"
)

func firstContactID(contacts []models.Contact) string {
	if len(contacts) == 0 {
		return ""
	}
	return contacts[0].ID
}

func firstDealID(deals []models.Deal) string {
	if len(deals) == 0 {
		return ""
	}
	return deals[0].ID
}

// NewContactForm is the blank contact form.
func NewContactForm() models.ContactInput {
	return models.ContactInput{Status: models.StatusLead}
}

// NewDealForm is the blank deal form: a lead at 10% for the first contact, closing today.
func NewDealForm(contacts []models.Contact, now time.Time) models.DealInput {
	return models.DealInput{
		Stage:         models.StageLead,
		Probability:   10,
		ContactID:     firstContactID(contacts),
		ExpectedClose: models.DateOf(now),
	}
}

// NewActivityForm is the blank activity form: a 30 minute call today.
func NewActivityForm(contacts []models.Contact, now time.Time) models.ActivityInput {
	y, m, d := now.Date()
	return models.ActivityInput{
		Type:      models.ActivityCall,
		ContactID: firstContactID(contacts),
		Date:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Duration:  30,
	}
}

// EditContactForm, EditDealForm, and EditActivityForm prefill a form from a record.
func EditContactForm(c models.Contact) models.ContactInput {
	return models.ContactInput{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Company:  c.Company,
		Position: c.Position,
		Status:   c.Status,
	}
}

func EditDealForm(d models.Deal) models.DealInput {
	return models.DealInput{
		Title:         d.Title,
		Value:         d.Value,
		Stage:         d.Stage,
		Probability:   d.Probability,
		ContactID:     d.ContactID,
		ExpectedClose: d.ExpectedClose,
	}
}

func EditActivityForm(a models.Activity) models.ActivityInput {
	return models.ActivityInput{
		Type:        a.Type,
		ContactID:   a.ContactID,
		DealID:      a.DealID,
		Description: a.Description,
		Date:        a.Date,
		Duration:    a.Duration,
	}
}

// MissingContactFields returns the labels of required fields left blank.
func MissingContactFields(in models.ContactInput) []string {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "Name")
	}
	return missing
}

func MissingDealFields(in models.DealInput) []string {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "Deal Title")
	}
	if in.ContactID == "" {
		missing = append(missing, "Contact")
	}
	if in.ExpectedClose.IsZero() {
		missing = append(missing, "Expected Close")
	}
	return missing
}

// InvalidDealFields lists fields outside their allowed range: value must not
// be negative and probability must be within 0..100.
func InvalidDealFields(value float64, probability int) []string {
	var invalid []string
	if value < 0 {
		invalid = append(invalid, "Value")
	}
	if probability < 0 || probability > 100 {
		invalid = append(invalid, "Probability")
	}
	return invalid
}

func MissingActivityFields(in models.ActivityInput) []string {
	var missing []string
	if in.ContactID == "" {
		missing = append(missing, "Contact")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "Description")
	}
	if in.Date.IsZero() {
		missing = append(missing, "Date")
	}
	if in.Duration <= 0 {
		missing = append(missing, "Duration (min)")
	}
	return missing
}

// QuickAddKind selects a dashboard quick-add action.
type QuickAddKind string

const (
	QuickContact  QuickAddKind = "contact"
	QuickDeal     QuickAddKind = "deal"
	QuickActivity QuickAddKind = "activity"
)

func QuickContactInput() models.ContactInput {
	return models.ContactInput{
		Name:     "New Contact",
		Email:    "new@example.com",
		Phone:    "123-456-7890",
		Company:  "New Co",
		Position: "Associate",
		Status:   models.StatusLead,
	}
}

func QuickDealInput(contacts []models.Contact, now time.Time) models.DealInput {
	return models.DealInput{
		Title:         "New Deal",
		Value:         1000,
		Stage:         models.StageLead,
		Probability:   10,
		ContactID:     firstContactID(contacts),
		ExpectedClose: models.DateOf(now),
	}
}

func QuickActivityInput(contacts []models.Contact, deals []models.Deal, now time.Time) models.ActivityInput {
	return models.ActivityInput{
		Type:        models.ActivityCall,
		ContactID:   firstContactID(contacts),
		DealID:      firstDealID(deals),
		Description: "New activity",
		Date:        now,
		Duration:    30,
	}
}
