// ABOUTME: Tests for the bubbletea model
// ABOUTME: Feeds key presses and page results through Update and inspects View
package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmdash/mockdata"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/services"
	"github.com/harperreed/crmdash/store"
)

var today = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T) Model {
	t.Helper()
	clock := func() time.Time { return today }
	svc := services.New(store.NewSet(mockdata.MustDefault()), services.Options{
		Delayer: services.NoDelay{},
		Clock:   clock,
	})
	m := NewModel(pages.Deps{
		API:      pages.FromServices(svc),
		Notifier: pages.NewNotifier(),
		Clock:    clock,
	})
	return run(t, m, m.Init()).(Model)
}

// run executes cmd the way the bubbletea runtime would, feeding page results
// back into Update. Timers started by Update are not run.
func run(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
	case pages.Envelope, graphMsg:
		m, _ = m.Update(msg)
	}
	return m
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// press sends a key and runs whatever work it starts.
func press(t *testing.T, m tea.Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = m.Update(keyMsg(k))
		m = run(t, m, cmd)
	}
	return m.(Model)
}

// send delivers keys without running the commands they return.
func send(m tea.Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m.(Model)
}

func typeText(m tea.Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m.(Model)
}

func TestDashboardShowsMetrics(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, pages.PhaseReady, m.home.Phase())
	view := m.View()
	assert.Contains(t, view, "1 Dashboard")
	assert.Contains(t, view, "Total Contacts")
	assert.Contains(t, view, "Pipeline Overview")
	assert.Contains(t, view, "Discussed contract terms")
}

func TestTabSwitchingMountsPage(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "2")
	assert.Equal(t, TabContacts, m.tab)
	assert.False(t, m.home.Mounted())
	assert.True(t, m.contacts.Mounted())
	assert.Contains(t, m.View(), "Sarah Johnson")

	m = press(t, m, "tab")
	assert.Equal(t, TabDeals, m.tab)
	assert.Contains(t, m.View(), "Total Pipeline")

	m = press(t, m, "4")
	assert.Equal(t, TabActivities, m.tab)
	assert.Contains(t, m.View(), "Discussed contract terms")
}

func TestLateResultIsIgnoredAfterTabSwitch(t *testing.T) {
	m := newTestModel(t)

	// Start loading contacts but switch away before the result lands.
	next, cmd := m.Update(keyMsg("2"))
	require.NotNil(t, cmd)
	next = send(next, "1")
	m = run(t, next, cmd).(Model)

	assert.Equal(t, TabDashboard, m.tab)
	assert.Empty(t, m.contacts.All())
}

func TestQuickAddContactShowsToast(t *testing.T) {
	m := newTestModel(t)
	before := len(m.home.Contacts())

	m = press(t, m, "c")

	assert.Len(t, m.home.Contacts(), before+1)
	require.NotEmpty(t, m.toasts)
	assert.Equal(t, "Contact created successfully", m.toasts[0].Text)
	assert.Contains(t, m.View(), "Contact created successfully")

	m2, _ := m.Update(toastExpiredMsg{id: m.toasts[0].ID})
	assert.Empty(t, m2.(Model).toasts)
}

func TestCreateContactThroughForm(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "2")
	before := len(m.contacts.All())

	m = press(t, m, "n")
	require.Equal(t, ViewEdit, m.viewMode)
	assert.Contains(t, m.View(), "NEW CONTACT")

	// Saving without a name keeps the form open.
	m = press(t, m, "enter")
	assert.Equal(t, ViewEdit, m.viewMode)
	assert.Contains(t, m.View(), "Required: Name")

	m = typeText(m, "Grace Hopper")
	m = press(t, m, "enter")

	assert.Equal(t, ViewList, m.viewMode)
	all := m.contacts.All()
	require.Len(t, all, before+1)
	assert.Equal(t, "Grace Hopper", all[0].Name)
}

func TestEditDealChoiceField(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "3")

	d, ok := m.selectedDeal()
	require.True(t, ok)

	m = press(t, m, "e")
	require.Equal(t, ViewEdit, m.viewMode)
	assert.Contains(t, m.View(), "EDIT DEAL")

	// Focus the stage field and advance it once.
	m = send(m, "down", "down", "right")
	m = press(t, m, "enter")

	require.Equal(t, ViewList, m.viewMode)
	for _, got := range m.deals.All() {
		if got.ID == d.ID {
			assert.NotEqual(t, d.Stage, got.Stage)
		}
	}
}

func TestEditDealRejectsProbabilityOverHundred(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "3")

	d, ok := m.selectedDeal()
	require.True(t, ok)

	m = press(t, m, "e")
	require.Equal(t, ViewEdit, m.viewMode)
	for i := range m.form.fields {
		if m.form.fields[i].key == "probability" {
			m.form.fields[i].input.SetValue("150")
		}
	}

	m = press(t, m, "enter")
	require.Equal(t, ViewEdit, m.viewMode)
	assert.Contains(t, m.View(), "Out of range: Probability")
	for _, got := range m.deals.All() {
		if got.ID == d.ID {
			assert.Equal(t, d.Probability, got.Probability)
		}
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "2")
	before := len(m.contacts.All())

	m = press(t, m, "x")
	require.Equal(t, ViewConfirmDelete, m.viewMode)
	assert.Contains(t, m.View(), "Sarah Johnson")

	m = press(t, m, "n")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Len(t, m.contacts.All(), before)

	m = press(t, m, "x", "y")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Len(t, m.contacts.All(), before-1)
	require.NotEmpty(t, m.toasts)
	assert.Equal(t, "Contact deleted successfully", m.toasts[len(m.toasts)-1].Text)
}

func TestContactDetails(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "2", "enter")

	require.Equal(t, ViewDetail, m.viewMode)
	view := m.View()
	assert.Contains(t, view, "CONTACT DETAILS")
	assert.Contains(t, view, "TechCorp Enterprise License")

	m = press(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Nil(t, m.contacts.Details())
}

func TestStatusFilterCycles(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "2", "s")

	assert.Equal(t, nextStatus(pages.StatusAll), m.contacts.StatusFilter())
	for _, c := range m.contacts.Visible() {
		assert.Equal(t, m.contacts.StatusFilter(), c.Status)
	}
}

func TestMoveDealStage(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "3")

	d, ok := m.selectedDeal()
	require.True(t, ok)

	m = press(t, m, "]")
	for _, got := range m.deals.All() {
		if got.ID == d.ID {
			assert.NotEqual(t, d.Stage, got.Stage)
		}
	}
}

func TestPipelineGraphView(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "3", "g")

	require.Equal(t, ViewGraph, m.viewMode)
	assert.Contains(t, m.graphDOT, "digraph")
	assert.Contains(t, m.View(), "PIPELINE GRAPH")

	m = press(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}
