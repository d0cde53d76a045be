// ABOUTME: Dashboard page controller
// ABOUTME: Loads every collection in parallel and offers one-key quick-add actions
package pages

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/viz"
)

type Home struct {
	lifecycle
	deps Deps

	contacts   []models.Contact
	deals      []models.Deal
	activities []models.Activity
}

var _ Controller = (*Home)(nil)

func NewHome(deps Deps) *Home {
	return &Home{lifecycle: lifecycle{id: HomeID, notify: deps.Notifier}, deps: deps}
}

type homeLoaded struct {
	contacts   []models.Contact
	deals      []models.Deal
	activities []models.Activity
	err        error
}

type quickAdded struct {
	kind     QuickAddKind
	contact  models.Contact
	deal     models.Deal
	activity models.Activity
	err      error
}

func (h *Home) Init() Cmd {
	h.mount()
	return h.load()
}

func (h *Home) Retry() Cmd {
	if !h.mounted {
		return nil
	}
	return h.load()
}

func (h *Home) load() Cmd {
	h.beginLoad()
	api := h.deps.API
	return h.stamp(func(ctx context.Context) any {
		var res homeLoaded
		var g errgroup.Group
		g.Go(func() (err error) {
			res.contacts, err = api.Contacts.GetAll(ctx)
			return err
		})
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

// QuickAdd creates a record with fixed placeholder values.
func (h *Home) QuickAdd(kind QuickAddKind) Cmd {
	api := h.deps.API
	now := h.deps.now()
	contacts, deals := h.contacts, h.deals

	switch kind {
	case QuickContact:
		return h.mutate(func(ctx context.Context) any {
			c, err := api.Contacts.Create(ctx, QuickContactInput())
			return quickAdded{kind: kind, contact: c, err: err}
		})
	case QuickDeal:
		in := QuickDealInput(contacts, now)
		return h.mutate(func(ctx context.Context) any {
			d, err := api.Deals.Create(ctx, in)
			return quickAdded{kind: kind, deal: d, err: err}
		})
	case QuickActivity:
		in := QuickActivityInput(contacts, deals, now)
		return h.mutate(func(ctx context.Context) any {
			a, err := api.Activities.Create(ctx, in)
			return quickAdded{kind: kind, activity: a, err: err}
		})
	}
	return nil
}

func (h *Home) Handle(msg Msg) bool {
	body, ok := h.open(msg)
	if !ok {
		return false
	}

	switch m := body.(type) {
	case homeLoaded:
		if m.err != nil {
			h.loadFailed(m.err, "Failed to load dashboard data")
			return true
		}
		h.contacts, h.deals, h.activities = m.contacts, m.deals, m.activities
		h.phase = PhaseReady

	case quickAdded:
		h.settled()
		if m.err != nil {
			h.notify.Error(fmt.Sprintf("Failed to create %s", m.kind))
			return true
		}
		switch m.kind {
		case QuickContact:
			h.contacts = prepend(h.contacts, m.contact)
			h.notify.Success("Contact created successfully")
		case QuickDeal:
			h.deals = prepend(h.deals, m.deal)
			h.notify.Success("Deal created successfully")
		case QuickActivity:
			h.activities = prepend(h.activities, m.activity)
			h.notify.Success("Activity logged successfully")
		}
	}
	return true
}

func (h *Home) Contacts() []models.Contact    { return h.contacts }
func (h *Home) Deals() []models.Deal          { return h.deals }
func (h *Home) Activities() []models.Activity { return h.activities }
func (h *Home) Metrics() viz.Metrics          { return viz.ComputeMetrics(h.contacts, h.deals) }
func (h *Home) Overview() []viz.StageSummary  { return viz.StageSummaries(h.deals, viz.OverviewStages()) }

// Recent returns the newest activities with their contact names resolved.
func (h *Home) Recent() []viz.ActivityItem {
	names := viz.ContactNames(h.contacts)
	var out []viz.ActivityItem
	for _, a := range viz.RecentActivities(h.activities, viz.RecentCount) {
		out = append(out, viz.ActivityItem{Activity: a, Contact: viz.ContactName(names, a.ContactID)})
	}
	return out
}
