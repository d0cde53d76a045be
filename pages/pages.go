// ABOUTME: UI-agnostic page controllers for the CRM screens
// ABOUTME: Commands run service calls off the UI loop and Handle folds results into view state
package pages

import (
	"context"
	"time"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/services"
)

// Phase is where a page is in its load lifecycle.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// PageID names a screen.
type PageID string

const (
	HomeID       PageID = "home"
	ContactsID   PageID = "contacts"
	DealsID      PageID = "deals"
	ActivitiesID PageID = "activities"
)

// Msg is the result of a Cmd, handed back to Handle.
type Msg any

// Cmd performs blocking work and reports back with a Msg.
// A nil Cmd means there is nothing to do.
type Cmd func(ctx context.Context) Msg

// Envelope tags a result with the page and mount generation that issued it.
type Envelope struct {
	Page PageID
	Gen  uint64
	Body any
}

// Controller is the lifecycle every page shares.
type Controller interface {
	ID() PageID
	Init() Cmd
	Retry() Cmd
	Unmount()
	Handle(msg Msg) bool
	Phase() Phase
	Err() string
}

type ContactAPI interface {
	GetAll(ctx context.Context) ([]models.Contact, error)
	GetByID(ctx context.Context, id string) (models.Contact, error)
	Create(ctx context.Context, in models.ContactInput) (models.Contact, error)
	Update(ctx context.Context, id string, patch models.ContactPatch) (models.Contact, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type DealAPI interface {
	GetAll(ctx context.Context) ([]models.Deal, error)
	GetByID(ctx context.Context, id string) (models.Deal, error)
	Create(ctx context.Context, in models.DealInput) (models.Deal, error)
	Update(ctx context.Context, id string, patch models.DealPatch) (models.Deal, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ActivityAPI interface {
	GetAll(ctx context.Context) ([]models.Activity, error)
	GetByID(ctx context.Context, id string) (models.Activity, error)
	Create(ctx context.Context, in models.ActivityInput) (models.Activity, error)
	Update(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// API is the set of data services the pages talk to.
type API struct {
	Contacts   ContactAPI
	Deals      DealAPI
	Activities ActivityAPI
}

func FromServices(s *services.Services) API {
	return API{Contacts: s.Contacts, Deals: s.Deals, Activities: s.Activities}
}

// Deps are shared by every controller.
type Deps struct {
	API      API
	Notifier *Notifier
	Clock    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock()
}

// lifecycle carries the load phase and the mount generation. Results stamped
// with an older generation are dropped, so work finishing after navigation
// never touches view state.
type lifecycle struct {
	id      PageID
	gen     uint64
	mounted bool
	phase   Phase
	err     string
	pending int
	notify  *Notifier
}

func (l *lifecycle) ID() PageID   { return l.id }
func (l *lifecycle) Phase() Phase { return l.phase }
func (l *lifecycle) Err() string  { return l.err }

// Busy reports whether a mutation is in flight.
func (l *lifecycle) Busy() bool { return l.pending > 0 }

func (l *lifecycle) Mounted() bool { return l.mounted }

func (l *lifecycle) mount() {
	l.gen++
	l.mounted = true
	l.pending = 0
}

// Unmount discards any results still in flight.
func (l *lifecycle) Unmount() {
	l.gen++
	l.mounted = false
	l.pending = 0
}

func (l *lifecycle) beginLoad() {
	l.phase = PhaseLoading
	l.err = ""
}

func (l *lifecycle) loadFailed(err error, toast string) {
	l.phase = PhaseError
	l.err = err.Error()
	if l.err == "" {
		l.err = "Failed to load data"
	}
	l.notify.Error(toast)
}

func (l *lifecycle) stamp(fn func(ctx context.Context) any) Cmd {
	page, gen := l.id, l.gen
	return func(ctx context.Context) Msg {
		return Envelope{Page: page, Gen: gen, Body: fn(ctx)}
	}
}

// mutate stamps a mutation and counts it as pending until its result arrives.
func (l *lifecycle) mutate(fn func(ctx context.Context) any) Cmd {
	if !l.mounted || l.phase != PhaseReady {
		return nil
	}
	l.pending++
	return l.stamp(fn)
}

// open unwraps msg if it belongs to the current mount of this page.
func (l *lifecycle) open(msg Msg) (any, bool) {
	env, ok := msg.(Envelope)
	if !ok || env.Page != l.id {
		return nil, false
	}
	if !l.mounted || env.Gen != l.gen {
		return nil, false
	}
	return env.Body, true
}

func (l *lifecycle) settled() {
	if l.pending > 0 {
		l.pending--
	}
}

type mutationKind int

const (
	created mutationKind = iota
	updated
	deleted
	moved
)

type mutation[T any] struct {
	kind mutationKind
	id   string
	rec  T
	err  error
}

type identified interface {
	EntityID() string
}

func prepend[T any](list []T, rec T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, rec)
	return append(out, list...)
}

func replaceByID[T identified](list []T, rec T) []T {
	out := make([]T, len(list))
	for i, cur := range list {
		if cur.EntityID() == rec.EntityID() {
			out[i] = rec
		} else {
			out[i] = cur
		}
	}
	return out
}

func removeByID[T identified](list []T, id string) []T {
	out := make([]T, 0, len(list))
	for _, cur := range list {
		if cur.EntityID() != id {
			out = append(out, cur)
		}
	}
	return out
}

func findByID[T identified](list []T, id string) (T, bool) {
	for _, cur := range list {
		if cur.EntityID() == id {
			return cur, true
		}
	}
	var zero T
	return zero, false
}

// apply folds a successful mutation into list.
func apply[T identified](list []T, m mutation[T]) []T {
	switch m.kind {
	case created:
		return prepend(list, m.rec)
	case updated, moved:
		return replaceByID(list, m.rec)
	case deleted:
		return removeByID(list, m.id)
	}
	return list
}
