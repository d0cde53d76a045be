// ABOUTME: Data models for CRM dashboard entities
// ABOUTME: Defines Contact, Deal, and Activity records plus their enumerations
package models

import (
	"strings"
	"time"
)

// ContactStatus is where a contact sits in the sales funnel.
type ContactStatus string

const (
	StatusLead      ContactStatus = "lead"
	StatusQualified ContactStatus = "qualified"
	StatusCustomer  ContactStatus = "customer"
)

// ContactStatuses lists every contact status in funnel order.
var ContactStatuses = []ContactStatus{StatusLead, StatusQualified, StatusCustomer}

// Label returns the display name of the status.
func (s ContactStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Stage is a named step in the deal pipeline.
type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosedWon   Stage = "closed-won"
	StageClosedLost  Stage = "closed-lost"
)

// DealStages lists every stage in pipeline order.
var DealStages = []Stage{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

var stageLabels = map[Stage]string{
	StageLead:        "Leads",
	StageQualified:   "Qualified",
	StageProposal:    "Proposal",
	StageNegotiation: "Negotiation",
	StageClosedWon:   "Closed Won",
	StageClosedLost:  "Closed Lost",
}

// Label returns the column heading used for the stage.
func (s Stage) Label() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return string(s)
}

// Closed reports whether the deal has left the active pipeline.
// Matches on the stage name so unknown "closed-*" stages count too.
func (s Stage) Closed() bool {
	return strings.Contains(string(s), "closed")
}

// ActivityType classifies a logged activity.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
)

// ActivityTypes lists every activity type.
var ActivityTypes = []ActivityType{ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote}

// Label returns the plural display name used by filters.
func (t ActivityType) Label() string {
	switch t {
	case ActivityCall:
		return "Calls"
	case ActivityEmail:
		return "Emails"
	case ActivityMeeting:
		return "Meetings"
	case ActivityNote:
		return "Notes"
	}
	return string(t)
}

type Contact struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Email       string        `json:"email" yaml:"email"`
	Phone       string        `json:"phone" yaml:"phone"`
	Company     string        `json:"company" yaml:"company"`
	Position    string        `json:"position" yaml:"position"`
	Status      ContactStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time     `json:"createdAt" yaml:"createdAt"`
	LastContact *time.Time    `json:"lastContact" yaml:"lastContact"`
}

func (c Contact) EntityID() string { return c.ID }

// Clone returns a copy that shares no memory with c.
func (c Contact) Clone() Contact {
	if c.LastContact != nil {
		last := *c.LastContact
		c.LastContact = &last
	}
	return c
}

type Deal struct {
	ID            string    `json:"id" yaml:"id"`
	Title         string    `json:"title" yaml:"title"`
	Value         float64   `json:"value" yaml:"value"`
	Stage         Stage     `json:"stage" yaml:"stage"`
	Probability   int       `json:"probability" yaml:"probability"`
	ContactID     string    `json:"contactId" yaml:"contactId"`
	ExpectedClose Date      `json:"expectedClose" yaml:"expectedClose"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
}

func (d Deal) EntityID() string { return d.ID }

// Clone returns a copy of d. Deals hold no pointers, so this is a value copy.
func (d Deal) Clone() Deal { return d }

type Activity struct {
	ID          string       `json:"id" yaml:"id"`
	Type        ActivityType `json:"type" yaml:"type"`
	ContactID   string       `json:"contactId" yaml:"contactId"`
	DealID      string       `json:"dealId,omitempty" yaml:"dealId,omitempty"`
	Description string       `json:"description" yaml:"description"`
	Date        time.Time    `json:"date" yaml:"date"`
	Duration    int          `json:"duration" yaml:"duration"` // minutes
}

func (a Activity) EntityID() string { return a.ID }

// Clone returns a copy of a.
func (a Activity) Clone() Activity { return a }

// ContactInput carries the caller-supplied fields of a new contact.
type ContactInput struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	Position string
	Status   ContactStatus
}

// Patch converts a full form submission into an update touching every editable field.
func (in ContactInput) Patch() ContactPatch {
	return ContactPatch{
		Name:     Ptr(in.Name),
		Email:    Ptr(in.Email),
		Phone:    Ptr(in.Phone),
		Company:  Ptr(in.Company),
		Position: Ptr(in.Position),
		Status:   Ptr(in.Status),
	}
}

// DealInput carries the caller-supplied fields of a new deal.
type DealInput struct {
	Title         string
	Value         float64
	Stage         Stage
	Probability   int
	ContactID     string
	ExpectedClose Date
}

func (in DealInput) Patch() DealPatch {
	return DealPatch{
		Title:         Ptr(in.Title),
		Value:         Ptr(in.Value),
		Stage:         Ptr(in.Stage),
		Probability:   Ptr(in.Probability),
		ContactID:     Ptr(in.ContactID),
		ExpectedClose: Ptr(in.ExpectedClose),
	}
}

// ActivityInput carries the caller-supplied fields of a new activity.
// A zero Date is replaced with the creation time.
type ActivityInput struct {
	Type        ActivityType
	ContactID   string
	DealID      string
	Description string
	Date        time.Time
	Duration    int
}

func (in ActivityInput) Patch() ActivityPatch {
	p := ActivityPatch{
		Type:        Ptr(in.Type),
		ContactID:   Ptr(in.ContactID),
		DealID:      Ptr(in.DealID),
		Description: Ptr(in.Description),
		Duration:    Ptr(in.Duration),
	}
	if !in.Date.IsZero() {
		p.Date = Ptr(in.Date)
	}
	return p
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
