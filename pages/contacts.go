// ABOUTME: Contacts page controller
// ABOUTME: Search and status filtering, CRUD reconciliation, and the per-contact details view
package pages

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmdash/models"
)

// StatusAll disables the status filter.
const StatusAll models.ContactStatus = ""

type Contacts struct {
	lifecycle
	deps Deps

	contacts []models.Contact
	search   string
	status   models.ContactStatus

	details *ContactDetails
}

// ContactDetails is the deals and activities of one contact.
type ContactDetails struct {
	Contact    models.Contact
	Deals      []models.Deal
	Activities []models.Activity
	Loading    bool
}

var _ Controller = (*Contacts)(nil)

func NewContacts(deps Deps) *Contacts {
	return &Contacts{lifecycle: lifecycle{id: ContactsID, notify: deps.Notifier}, deps: deps}
}

type contactsLoaded struct {
	contacts []models.Contact
	err      error
}

type detailsLoaded struct {
	contactID  string
	deals      []models.Deal
	activities []models.Activity
	err        error
}

func (p *Contacts) Init() Cmd {
	p.mount()
	p.details = nil
	return p.load()
}

func (p *Contacts) Retry() Cmd {
	if !p.mounted {
		return nil
	}
	return p.load()
}

func (p *Contacts) load() Cmd {
	p.beginLoad()
	api := p.deps.API
	return p.stamp(func(ctx context.Context) any {
		contacts, err := api.Contacts.GetAll(ctx)
		return contactsLoaded{contacts: contacts, err: err}
	})
}

// Save creates a contact when id is empty and updates it otherwise.
func (p *Contacts) Save(id string, in models.ContactInput) Cmd {
	api := p.deps.API
	if id == "" {
		return p.mutate(func(ctx context.Context) any {
			c, err := api.Contacts.Create(ctx, in)
			return mutation[models.Contact]{kind: created, rec: c, err: err}
		})
	}
	return p.mutate(func(ctx context.Context) any {
		c, err := api.Contacts.Update(ctx, id, in.Patch())
		return mutation[models.Contact]{kind: updated, id: id, rec: c, err: err}
	})
}

// Delete removes a contact. Confirmation is the caller's job.
func (p *Contacts) Delete(id string) Cmd {
	api := p.deps.API
	return p.mutate(func(ctx context.Context) any {
		_, err := api.Contacts.Delete(ctx, id)
		return mutation[models.Contact]{kind: deleted, id: id, err: err}
	})
}

// OpenDetails shows a contact's deals and activities, loading them on demand.
func (p *Contacts) OpenDetails(id string) Cmd {
	contact, ok := findByID(p.contacts, id)
	if !ok || !p.mounted {
		return nil
	}
	p.details = &ContactDetails{Contact: contact, Loading: true}

	api := p.deps.API
	return p.stamp(func(ctx context.Context) any {
		res := detailsLoaded{contactID: id}
		var g errgroup.Group
		g.Go(func() (err error) {
			res.deals, err = api.Deals.GetAll(ctx)
			return err
		})
		g.Go(func() (err error) {
			res.activities, err = api.Activities.GetAll(ctx)
			return err
		})
		res.err = g.Wait()
		return res
	})
}

func (p *Contacts) CloseDetails() { p.details = nil }

// Details returns the open details view, or nil.
func (p *Contacts) Details() *ContactDetails { return p.details }

func (p *Contacts) Handle(msg Msg) bool {
	body, ok := p.open(msg)
	if !ok {
		return false
	}

	switch m := body.(type) {
	case contactsLoaded:
		if m.err != nil {
			p.loadFailed(m.err, "Failed to load contacts")
			return true
		}
		p.contacts = m.contacts
		p.phase = PhaseReady

	case mutation[models.Contact]:
		p.settled()
		if m.err != nil {
			if m.kind == deleted {
				p.notify.Error("Failed to delete contact")
			} else {
				p.notify.Error("Failed to save contact")
			}
			return true
		}
		p.contacts = apply(p.contacts, m)
		switch m.kind {
		case created:
			p.notify.Success("Contact created successfully")
		case updated:
			p.notify.Success("Contact updated successfully")
		case deleted:
			p.notify.Success("Contact deleted successfully")
			if p.details != nil && p.details.Contact.ID == m.id {
				p.details = nil
			}
		}

	case detailsLoaded:
		if p.details == nil || p.details.Contact.ID != m.contactID {
			return true
		}
		p.details.Loading = false
		if m.err != nil {
			p.notify.Error("Failed to load contact details")
			return true
		}
		for _, d := range m.deals {
			if d.ContactID == m.contactID {
				p.details.Deals = append(p.details.Deals, d)
			}
		}
		for _, a := range m.activities {
			if a.ContactID == m.contactID {
				p.details.Activities = append(p.details.Activities, a)
			}
		}
	}
	return true
}

func (p *Contacts) SetSearch(s string)                     { p.search = s }
func (p *Contacts) Search() string                         { return p.search }
func (p *Contacts) SetStatusFilter(s models.ContactStatus) { p.status = s }
func (p *Contacts) StatusFilter() models.ContactStatus     { return p.status }
func (p *Contacts) All() []models.Contact                  { return p.contacts }

// Filtering reports whether a search or status filter is active.
func (p *Contacts) Filtering() bool {
	return p.search != "" || p.status != StatusAll
}

// Visible returns the contacts matching the search term and status filter.
func (p *Contacts) Visible() []models.Contact {
	return FilterContacts(p.contacts, p.search, p.status)
}

// EmptyTitle is shown when Visible is empty.
func (p *Contacts) EmptyTitle() string {
	if p.Filtering() {
		return "No contacts found"
	}
	return "No contacts yet"
}

// FilterContacts matches term case-insensitively against name, email and
// company, and status exactly unless it is StatusAll.
func FilterContacts(contacts []models.Contact, term string, status models.ContactStatus) []models.Contact {
	term = strings.ToLower(term)
	out := []models.Contact{}
	for _, c := range contacts {
		if status != StatusAll && c.Status != status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(strings.ToLower(c.Email), term) &&
			!strings.Contains(strings.ToLower(c.Company), term) {
			continue
		}
		out = append(out, c)
	}
	return out
}
