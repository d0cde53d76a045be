// ABOUTME: Activities page controller
// ABOUTME: Type filtering with per-type counts and activity CRUD reconciliation
package pages

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/viz"
)

// TypeAll disables the type filter.
const TypeAll models.ActivityType = ""

type Activities struct {
	lifecycle
	deps Deps

	activities []models.Activity
	contacts   []models.Contact
	deals      []models.Deal
	typ        models.ActivityType
}

var _ Controller = (*Activities)(nil)

func NewActivities(deps Deps) *Activities {
	return &Activities{lifecycle: lifecycle{id: ActivitiesID, notify: deps.Notifier}, deps: deps}
}

type activitiesLoaded struct {
	activities []models.Activity
	contacts   []models.Contact
	deals      []models.Deal
	err        error
}

func (p *Activities) Init() Cmd {
	p.mount()
	return p.load()
}

func (p *Activities) Retry() Cmd {
	if !p.mounted {
		return nil
	}
	return p.load()
}

func (p *Activities) load() Cmd {
	p.beginLoad()
	api := p.deps.API
	return p.stamp(func(ctx context.Context) any {
		var res activitiesLoaded
		var g errgroup.Group
		g.Go(func() (err error) {
			res.activities, err = api.Activities.GetAll(ctx)
			return err
		})
		g.Go(func() (err error) {
			res.contacts, err = api.Contacts.GetAll(ctx)
			return err
		})
		g.Go(func() (err error) {
			res.deals, err = api.Deals.GetAll(ctx)
			return err
		})
		res.err = g.Wait()
		return res
	})
}

// Save logs an activity when id is empty and updates it otherwise.
func (p *Activities) Save(id string, in models.ActivityInput) Cmd {
	api := p.deps.API
	if id == "" {
		return p.mutate(func(ctx context.Context) any {
			a, err := api.Activities.Create(ctx, in)
			return mutation[models.Activity]{kind: created, rec: a, err: err}
		})
	}
	return p.mutate(func(ctx context.Context) any {
		a, err := api.Activities.Update(ctx, id, in.Patch())
		return mutation[models.Activity]{kind: updated, id: id, rec: a, err: err}
	})
}

func (p *Activities) Delete(id string) Cmd {
	api := p.deps.API
	return p.mutate(func(ctx context.Context) any {
		_, err := api.Activities.Delete(ctx, id)
		return mutation[models.Activity]{kind: deleted, id: id, err: err}
	})
}

func (p *Activities) Handle(msg Msg) bool {
	body, ok := p.open(msg)
	if !ok {
		return false
	}

	switch m := body.(type) {
	case activitiesLoaded:
		if m.err != nil {
			p.loadFailed(m.err, "Failed to load activities")
			return true
		}
		p.activities, p.contacts, p.deals = m.activities, m.contacts, m.deals
		p.phase = PhaseReady

	case mutation[models.Activity]:
		p.settled()
		if m.err != nil {
			if m.kind == deleted {
				p.notify.Error("Failed to delete activity")
			} else {
				p.notify.Error("Failed to save activity")
			}
			return true
		}
		p.activities = apply(p.activities, m)
		switch m.kind {
		case created:
			p.notify.Success("Activity logged successfully")
		case updated:
			p.notify.Success("Activity updated successfully")
		case deleted:
			p.notify.Success("Activity deleted successfully")
		}
	}
	return true
}

func (p *Activities) All() []models.Activity              { return p.activities }
func (p *Activities) Contacts() []models.Contact          { return p.contacts }
func (p *Activities) Deals() []models.Deal                { return p.deals }
func (p *Activities) SetTypeFilter(t models.ActivityType) { p.typ = t }
func (p *Activities) TypeFilter() models.ActivityType     { return p.typ }
func (p *Activities) Visible() []models.Activity          { return FilterActivities(p.activities, p.typ) }

// Counts returns how many activities have each type, plus the total under TypeAll.
func (p *Activities) Counts() map[models.ActivityType]int {
	counts := map[models.ActivityType]int{TypeAll: len(p.activities)}
	for _, a := range p.activities {
		counts[a.Type]++
	}
	return counts
}

func (p *Activities) EmptyTitle() string {
	if p.typ == TypeAll {
		return "No activities yet"
	}
	return fmt.Sprintf("No %s activities", p.typ)
}

func (p *Activities) ContactName(id string) string {
	return viz.ContactName(viz.ContactNames(p.contacts), id)
}

// DealTitle resolves an optional deal reference. Empty when there is none.
func (p *Activities) DealTitle(id string) string {
	if id == "" {
		return ""
	}
	if d, ok := findByID(p.deals, id); ok {
		return d.Title
	}
	return "Unknown Deal"
}

func (p *Activities) NewForm() models.ActivityInput {
	return NewActivityForm(p.contacts, p.deps.now())
}

// FilterActivities keeps activities of typ, or all of them for TypeAll.
func FilterActivities(activities []models.Activity, typ models.ActivityType) []models.Activity {
	out := []models.Activity{}
	for _, a := range activities {
		if typ == TypeAll || a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}
