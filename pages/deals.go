// ABOUTME: Deals page controller
// ABOUTME: Pipeline board columns, stage moves, and deal CRUD reconciliation
package pages

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/viz"
)

type Deals struct {
	lifecycle
	deps Deps

	deals    []models.Deal
	contacts []models.Contact
}

var _ Controller = (*Deals)(nil)

func NewDeals(deps Deps) *Deals {
	return &Deals{lifecycle: lifecycle{id: DealsID, notify: deps.Notifier}, deps: deps}
}

type dealsLoaded struct {
	deals    []models.Deal
	contacts []models.Contact
	err      error
}

func (p *Deals) Init() Cmd {
	p.mount()
	return p.load()
}

func (p *Deals) Retry() Cmd {
	if !p.mounted {
		return nil
	}
	return p.load()
}

func (p *Deals) load() Cmd {
	p.beginLoad()
	api := p.deps.API
	return p.stamp(func(ctx context.Context) any {
		var res dealsLoaded
		var g errgroup.Group
		g.Go(func() (err error) {
			res.deals, err = api.Deals.GetAll(ctx)
			return err
		})
		g.Go(func() (err error) {
			res.contacts, err = api.Contacts.GetAll(ctx)
			return err
		})
		res.err = g.Wait()
		return res
	})
}

// Save creates a deal when id is empty and updates it otherwise.
func (p *Deals) Save(id string, in models.DealInput) Cmd {
	api := p.deps.API
	if id == "" {
		return p.mutate(func(ctx context.Context) any {
			d, err := api.Deals.Create(ctx, in)
			return mutation[models.Deal]{kind: created, rec: d, err: err}
		})
	}
	return p.mutate(func(ctx context.Context) any {
		d, err := api.Deals.Update(ctx, id, in.Patch())
		return mutation[models.Deal]{kind: updated, id: id, rec: d, err: err}
	})
}

func (p *Deals) Delete(id string) Cmd {
	api := p.deps.API
	return p.mutate(func(ctx context.Context) any {
		_, err := api.Deals.Delete(ctx, id)
		return mutation[models.Deal]{kind: deleted, id: id, err: err}
	})
}

// MoveStage moves a deal to stage. Returns nil when the deal is unknown or
// already there.
func (p *Deals) MoveStage(id string, stage models.Stage) Cmd {
	deal, ok := findByID(p.deals, id)
	if !ok || deal.Stage == stage {
		return nil
	}
	api := p.deps.API
	return p.mutate(func(ctx context.Context) any {
		d, err := api.Deals.Update(ctx, id, models.DealStage(stage))
		return mutation[models.Deal]{kind: moved, id: id, rec: d, err: err}
	})
}

func (p *Deals) Handle(msg Msg) bool {
	body, ok := p.open(msg)
	if !ok {
		return false
	}

	switch m := body.(type) {
	case dealsLoaded:
		if m.err != nil {
			p.loadFailed(m.err, "Failed to load deals")
			return true
		}
		p.deals, p.contacts = m.deals, m.contacts
		p.phase = PhaseReady

	case mutation[models.Deal]:
		p.settled()
		if m.err != nil {
			switch m.kind {
			case deleted:
				p.notify.Error("Failed to delete deal")
			case moved:
				p.notify.Error("Failed to update deal stage")
			default:
				p.notify.Error("Failed to save deal")
			}
			return true
		}
		p.deals = apply(p.deals, m)
		switch m.kind {
		case created:
			p.notify.Success("Deal created successfully")
		case updated:
			p.notify.Success("Deal updated successfully")
		case deleted:
			p.notify.Success("Deal deleted successfully")
		case moved:
			p.notify.Success(fmt.Sprintf("Deal moved to %s", m.rec.Stage.Label()))
		}
	}
	return true
}

func (p *Deals) All() []models.Deal          { return p.deals }
func (p *Deals) Contacts() []models.Contact  { return p.contacts }
func (p *Deals) Columns() []viz.StageSummary { return viz.StageSummaries(p.deals, viz.BoardStages()) }
func (p *Deals) ActiveValue() float64        { return viz.ActivePipelineValue(p.deals) }

func (p *Deals) ContactName(id string) string {
	return viz.ContactName(viz.ContactNames(p.contacts), id)
}

// NewForm returns the defaults for a new deal.
func (p *Deals) NewForm() models.DealInput {
	return NewDealForm(p.contacts, p.deps.now())
}
