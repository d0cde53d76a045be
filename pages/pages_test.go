// ABOUTME: Tests for the page controllers
// ABOUTME: Drives commands synchronously against seeded services with no latency
package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harperreed/crmdash/mockdata"
	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/services"
	"github.com/harperreed/crmdash/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var today = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func testDeps(t *testing.T) (Deps, *services.Services) {
	t.Helper()
	svc := services.New(store.NewSet(mockdata.MustDefault()), services.Options{
		Delayer: services.NoDelay{},
		Clock:   func() time.Time { return today },
	})
	return Deps{
		API:      FromServices(svc),
		Notifier: NewNotifier(),
		Clock:    func() time.Time { return today },
	}, svc
}

// run executes cmd and hands the result to c, as the UI loop would.
func run(t *testing.T, c Controller, cmd Cmd) bool {
	t.Helper()
	require.NotNil(t, cmd)
	return c.Handle(cmd(context.Background()))
}

func texts(n *Notifier) []string {
	var out []string
	for _, toast := range n.Drain() {
		out = append(out, toast.Text)
	}
	return out
}

type broken[T, In, P any] struct{ err error }

func (b broken[T, In, P]) GetAll(context.Context) ([]T, error) {
	return nil, b.err
}

func (b broken[T, In, P]) GetByID(context.Context, string) (T, error) {
	var zero T
	return zero, b.err
}

func (b broken[T, In, P]) Create(context.Context, In) (T, error) {
	var zero T
	return zero, b.err
}

func (b broken[T, In, P]) Update(context.Context, string, P) (T, error) {
	var zero T
	return zero, b.err
}

func (b broken[T, In, P]) Delete(context.Context, string) (bool, error) {
	return false, b.err
}

var errBackend = errors.New("backend unavailable")

func TestHomeLoadsAndComputesMetrics(t *testing.T) {
	deps, _ := testDeps(t)
	seed := mockdata.MustDefault()
	home := NewHome(deps)

	cmd := home.Init()
	assert.Equal(t, PhaseLoading, home.Phase())
	assert.True(t, run(t, home, cmd))

	require.Equal(t, PhaseReady, home.Phase())
	m := home.Metrics()
	assert.Equal(t, len(seed.Contacts), m.TotalContacts)
	assert.Len(t, home.Recent(), 5)
	assert.Equal(t, seed.Activities[0].ID, home.Recent()[0].Activity.ID)
	require.Len(t, home.Overview(), 4)
	assert.Equal(t, models.StageLead, home.Overview()[0].Stage)
	assert.Equal(t, models.StageNegotiation, home.Overview()[3].Stage)
}

func TestHomeLoadFailureThenRetry(t *testing.T) {
	deps, svc := testDeps(t)
	deps.API.Deals = broken[models.Deal, models.DealInput, models.DealPatch]{err: errBackend}
	home := NewHome(deps)

	run(t, home, home.Init())
	assert.Equal(t, PhaseError, home.Phase())
	assert.Equal(t, errBackend.Error(), home.Err())
	assert.Equal(t, []string{"Failed to load dashboard data"}, texts(deps.Notifier))
	assert.Empty(t, home.Contacts(), "no partial success")

	home.deps.API.Deals = svc.Deals
	cmd := home.Retry()
	assert.Equal(t, PhaseLoading, home.Phase())
	assert.Empty(t, home.Err())
	run(t, home, cmd)
	assert.Equal(t, PhaseReady, home.Phase())
}

func TestHomeQuickAdd(t *testing.T) {
	deps, svc := testDeps(t)
	home := NewHome(deps)
	run(t, home, home.Init())
	firstContact := home.Contacts()[0].ID
	firstDeal := home.Deals()[0].ID
	deps.Notifier.Drain()

	run(t, home, home.QuickAdd(QuickContact))
	run(t, home, home.QuickAdd(QuickDeal))
	run(t, home, home.QuickAdd(QuickActivity))

	assert.Equal(t, []string{
		"Contact created successfully",
		"Deal created successfully",
		"Activity logged successfully",
	}, texts(deps.Notifier))

	assert.Equal(t, "New Contact", home.Contacts()[0].Name)

	deal := home.Deals()[0]
	assert.Equal(t, "New Deal", deal.Title)
	assert.Equal(t, 1000.0, deal.Value)
	assert.Equal(t, firstContact, deal.ContactID)
	assert.Equal(t, models.DateOf(today), deal.ExpectedClose)

	act := home.Activities()[0]
	assert.Equal(t, "New activity", act.Description)
	assert.Equal(t, firstDeal, act.DealID)
	assert.Equal(t, 30, act.Duration)

	stored, err := svc.Activities.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, act.ID, stored[0].ID)
}

func TestHomeQuickAddFailure(t *testing.T) {
	deps, _ := testDeps(t)
	home := NewHome(deps)
	run(t, home, home.Init())
	before := home.Contacts()
	deps.Notifier.Drain()

	home.deps.API.Contacts = broken[models.Contact, models.ContactInput, models.ContactPatch]{err: errBackend}
	run(t, home, home.QuickAdd(QuickContact))

	assert.Equal(t, before, home.Contacts())
	assert.Equal(t, []string{"Failed to create contact"}, texts(deps.Notifier))
	assert.False(t, home.Busy())
}

func TestMutationsRequireReady(t *testing.T) {
	deps, _ := testDeps(t)
	contacts := NewContacts(deps)
	contacts.Init()

	assert.Nil(t, contacts.Save("", models.ContactInput{Name: "Early"}))
	assert.Nil(t, contacts.Delete("1"))
}

func TestLateResultsAfterUnmountAreDropped(t *testing.T) {
	deps, _ := testDeps(t)
	contacts := NewContacts(deps)

	stale := contacts.Init()
	contacts.Unmount()
	assert.False(t, contacts.Handle(stale(context.Background())))
	assert.Empty(t, contacts.All())
	assert.Empty(t, deps.Notifier.Drain())

	// Remounting does not resurrect the old load either.
	fresh := contacts.Init()
	assert.False(t, contacts.Handle(stale(context.Background())))
	assert.Equal(t, PhaseLoading, contacts.Phase())
	assert.True(t, run(t, contacts, fresh))
	assert.Equal(t, PhaseReady, contacts.Phase())
}

func TestHandleIgnoresOtherPages(t *testing.T) {
	deps, _ := testDeps(t)
	home := NewHome(deps)
	deals := NewDeals(deps)

	homeCmd := home.Init()
	deals.Init()
	assert.False(t, deals.Handle(homeCmd(context.Background())))
	assert.False(t, deals.Handle("not an envelope"))
}

func TestContactsCRUD(t *testing.T) {
	deps, svc := testDeps(t)
	page := NewContacts(deps)
	run(t, page, page.Init())
	n := len(page.All())
	deps.Notifier.Drain()

	run(t, page, page.Save("", models.ContactInput{Name: "Ada", Status: models.StatusLead}))
	require.Len(t, page.All(), n+1)
	ada := page.All()[0]
	assert.Equal(t, "Ada", ada.Name)
	assert.Nil(t, ada.LastContact)

	in := EditContactForm(ada)
	in.Company = "Analytical Engines"
	run(t, page, page.Save(ada.ID, in))
	assert.Equal(t, "Analytical Engines", page.All()[0].Company)
	assert.Equal(t, ada.CreatedAt, page.All()[0].CreatedAt)

	run(t, page, page.Delete(ada.ID))
	assert.Len(t, page.All(), n)
	_, err := svc.Contacts.GetByID(context.Background(), ada.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	assert.Equal(t, []string{
		"Contact created successfully",
		"Contact updated successfully",
		"Contact deleted successfully",
	}, texts(deps.Notifier))
}

func TestContactsDeleteMissingLeavesViewIntact(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewContacts(deps)
	run(t, page, page.Init())
	before := page.All()
	deps.Notifier.Drain()

	run(t, page, page.Delete("does-not-exist"))
	assert.Equal(t, before, page.All())
	assert.Equal(t, []string{"Failed to delete contact"}, texts(deps.Notifier))
}

func TestContactsFiltering(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Name: "Ada Lovelace", Email: "ada@engines.io", Company: "Engines", Status: models.StatusLead},
		{ID: "2", Name: "Grace Hopper", Email: "grace@navy.mil", Company: "Navy", Status: models.StatusCustomer},
		{ID: "3", Name: "Alan Turing", Email: "alan@bletchley.uk", Company: "Bletchley ENGINES", Status: models.StatusCustomer},
	}

	ids := func(cs []models.Contact) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterContacts(contacts, "", StatusAll)))
	assert.Equal(t, []string{"1", "3"}, ids(FilterContacts(contacts, "engines", StatusAll)))
	assert.Equal(t, []string{"2"}, ids(FilterContacts(contacts, "NAVY.MIL", StatusAll)))
	assert.Equal(t, []string{"3"}, ids(FilterContacts(contacts, "engines", models.StatusCustomer)))
	assert.Empty(t, FilterContacts(contacts, "zzz", StatusAll))
}

func TestContactsEmptyTitle(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewContacts(deps)
	assert.Equal(t, "No contacts yet", page.EmptyTitle())
	page.SetSearch("x")
	assert.Equal(t, "No contacts found", page.EmptyTitle())
	page.SetSearch("")
	page.SetStatusFilter(models.StatusQualified)
	assert.Equal(t, "No contacts found", page.EmptyTitle())
}

func TestContactDetails(t *testing.T) {
	deps, _ := testDeps(t)
	seed := mockdata.MustDefault()
	page := NewContacts(deps)
	run(t, page, page.Init())

	id := seed.Deals[0].ContactID
	cmd := page.OpenDetails(id)
	require.NotNil(t, page.Details())
	assert.True(t, page.Details().Loading)
	run(t, page, cmd)

	d := page.Details()
	require.NotNil(t, d)
	assert.False(t, d.Loading)
	assert.Equal(t, id, d.Contact.ID)
	require.NotEmpty(t, d.Deals)
	for _, deal := range d.Deals {
		assert.Equal(t, id, deal.ContactID)
	}
	for _, a := range d.Activities {
		assert.Equal(t, id, a.ContactID)
	}

	assert.Nil(t, page.OpenDetails("unknown"))
	page.CloseDetails()
	assert.Nil(t, page.Details())
}

func TestContactDetailsFailureOnlyToasts(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewContacts(deps)
	run(t, page, page.Init())
	deps.Notifier.Drain()

	page.deps.API.Activities = broken[models.Activity, models.ActivityInput, models.ActivityPatch]{err: errBackend}
	run(t, page, page.OpenDetails("1"))

	assert.Equal(t, PhaseReady, page.Phase())
	require.NotNil(t, page.Details())
	assert.False(t, page.Details().Loading)
	assert.Equal(t, []string{"Failed to load contact details"}, texts(deps.Notifier))
}

func TestDealsMoveStage(t *testing.T) {
	deps, svc := testDeps(t)
	page := NewDeals(deps)
	run(t, page, page.Init())
	deps.Notifier.Drain()

	deal := page.All()[0]
	assert.Nil(t, page.MoveStage(deal.ID, deal.Stage), "same column issues no call")
	assert.Nil(t, page.MoveStage("unknown", models.StageQualified))

	target := models.StageNegotiation
	if deal.Stage == target {
		target = models.StageProposal
	}
	run(t, page, page.MoveStage(deal.ID, target))

	assert.Equal(t, target, page.All()[0].Stage)
	assert.Equal(t, deal.Value, page.All()[0].Value)
	assert.Equal(t, []string{"Deal moved to " + target.Label()}, texts(deps.Notifier))

	stored, err := svc.Deals.GetByID(context.Background(), deal.ID)
	require.NoError(t, err)
	assert.Equal(t, target, stored.Stage)
}

func TestDealsMoveStageFailure(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewDeals(deps)
	run(t, page, page.Init())
	before := page.All()
	deps.Notifier.Drain()

	page.deps.API.Deals = broken[models.Deal, models.DealInput, models.DealPatch]{err: errBackend}
	run(t, page, page.MoveStage(before[0].ID, models.StageClosedWon))

	assert.Equal(t, before, page.All())
	assert.Equal(t, []string{"Failed to update deal stage"}, texts(deps.Notifier))
}

func TestDealsColumnsAndActiveValue(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewDeals(deps)
	run(t, page, page.Init())

	cols := page.Columns()
	require.Len(t, cols, 5)
	assert.Equal(t, "Closed Won", cols[4].Label())

	var want float64
	for _, d := range page.All() {
		if !d.Stage.Closed() {
			want += d.Value
		}
	}
	assert.Equal(t, want, page.ActiveValue())

	form := page.NewForm()
	assert.Equal(t, models.StageLead, form.Stage)
	assert.Equal(t, 10, form.Probability)
	assert.Equal(t, page.Contacts()[0].ID, form.ContactID)
	assert.Equal(t, models.DateOf(today), form.ExpectedClose)
}

func TestDealsCreateAndEdit(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewDeals(deps)
	run(t, page, page.Init())
	deps.Notifier.Drain()

	in := page.NewForm()
	in.Title = "Acme"
	in.Value = 5000
	run(t, page, page.Save("", in))
	acme := page.All()[0]
	assert.Equal(t, "Acme", acme.Title)

	edit := EditDealForm(acme)
	edit.Stage = models.StageQualified
	run(t, page, page.Save(acme.ID, edit))
	assert.Equal(t, models.StageQualified, page.All()[0].Stage)
	assert.Equal(t, 5000.0, page.All()[0].Value)

	assert.Equal(t, []string{"Deal created successfully", "Deal updated successfully"}, texts(deps.Notifier))
}

func TestActivitiesFilterAndCounts(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewActivities(deps)
	run(t, page, page.Init())

	counts := page.Counts()
	assert.Equal(t, len(page.All()), counts[TypeAll])

	sum := 0
	for _, typ := range models.ActivityTypes {
		sum += counts[typ]
	}
	assert.Equal(t, counts[TypeAll], sum)

	page.SetTypeFilter(models.ActivityMeeting)
	for _, a := range page.Visible() {
		assert.Equal(t, models.ActivityMeeting, a.Type)
	}
	assert.Len(t, page.Visible(), counts[models.ActivityMeeting])
	assert.Equal(t, "No meeting activities", page.EmptyTitle())

	page.SetTypeFilter(TypeAll)
	assert.Equal(t, "No activities yet", page.EmptyTitle())
	assert.Len(t, page.Visible(), counts[TypeAll])
}

func TestActivitiesCreateDefaultsAndDelete(t *testing.T) {
	deps, _ := testDeps(t)
	page := NewActivities(deps)
	run(t, page, page.Init())
	n := len(page.All())
	deps.Notifier.Drain()

	form := page.NewForm()
	assert.Equal(t, models.ActivityCall, form.Type)
	assert.Equal(t, 30, form.Duration)
	assert.Contains(t, MissingActivityFields(form), "Description")

	form.Description = "Intro call"
	assert.Empty(t, MissingActivityFields(form))
	run(t, page, page.Save("", form))
	require.Len(t, page.All(), n+1)
	created := page.All()[0]
	assert.Equal(t, "", page.DealTitle(created.DealID))

	run(t, page, page.Delete(created.ID))
	assert.Len(t, page.All(), n)
	assert.Equal(t, []string{"Activity logged successfully", "Activity deleted successfully"}, texts(deps.Notifier))
}

func TestRequiredFieldHints(t *testing.T) {
	assert.Equal(t, []string{"Name"}, MissingContactFields(NewContactForm()))
	assert.Empty(t, MissingContactFields(QuickContactInput()))
	assert.Equal(t, []string{"Deal Title", "Contact"}, MissingDealFields(NewDealForm(nil, today)))
}

func TestNotifierDrain(t *testing.T) {
	n := NewNotifier()
	n.Success("a")
	n.Error("b")

	toasts := n.Drain()
	require.Len(t, toasts, 2)
	assert.NotEqual(t, toasts[0].ID, toasts[1].ID)
	assert.Equal(t, LevelSuccess, toasts[0].Level)
	assert.Equal(t, LevelError, toasts[1].Level)
	assert.Empty(t, n.Drain())

	var nilNotifier *Notifier
	nilNotifier.Success("ignored")
	assert.Nil(t, nilNotifier.Drain())
}
