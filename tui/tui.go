// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Hosts the dashboard, contacts, deals, and activities pages behind tabs
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmdash/pages"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmDelete
)

// Tab is one of the top-level screens
type Tab int

const (
	TabDashboard Tab = iota
	TabContacts
	TabDeals
	TabActivities
)

var tabNames = []string{"Dashboard", "Contacts", "Deals", "Activities"}

// DefaultToastTTL is how long a notification stays on screen.
const DefaultToastTTL = 3 * time.Second

type toastExpiredMsg struct{ id string }

type graphMsg struct {
	dot string
	err error
}

// Model is the main bubbletea model
type Model struct {
	ctx  context.Context
	deps pages.Deps

	home       *pages.Home
	contacts   *pages.Contacts
	deals      *pages.Deals
	activities *pages.Activities

	tab      Tab
	viewMode ViewMode

	// List view state
	selectedRow int
	dealColumn  int
	searching   bool
	searchInput textinput.Model

	// Edit view state
	form *form

	// Graph view state
	graphDOT string

	// Delete confirmation state
	deleteID string

	toasts   []pages.Toast
	toastTTL time.Duration
	spinner  spinner.Model

	// UI state
	width  int
	height int
}

// Option tweaks a Model.
type Option func(*Model)

// WithToastTTL sets how long notifications stay visible.
func WithToastTTL(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.toastTTL = d
		}
	}
}

// WithContext sets the context handed to every service call.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// NewModel creates a new TUI model
func NewModel(deps pages.Deps, opts ...Option) Model {
	if deps.Notifier == nil {
		deps.Notifier = pages.NewNotifier()
	}

	search := textinput.New()
	search.Placeholder = "Search contacts..."
	search.Prompt = "/ "
	search.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	m := Model{
		ctx:         context.Background(),
		deps:        deps,
		home:        pages.NewHome(deps),
		contacts:    pages.NewContacts(deps),
		deals:       pages.NewDeals(deps),
		activities:  pages.NewActivities(deps),
		tab:         TabDashboard,
		viewMode:    ViewList,
		searchInput: search,
		toastTTL:    DefaultToastTTL,
		spinner:     sp,
		width:       100,
		height:      30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.lift(m.page().Init()), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case toastExpiredMsg:
		m.toasts = removeToast(m.toasts, msg.id)
		return m, nil
	case graphMsg:
		if m.viewMode == ViewGraph {
			if msg.err != nil {
				m.graphDOT = "Error: " + msg.err.Error()
			} else {
				m.graphDOT = msg.dot
			}
		}
		return m, nil
	case pages.Envelope:
		for _, p := range m.controllers() {
			if p.Handle(msg) {
				break
			}
		}
		m.clampSelection()
		cmd := m.collectToasts()
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Text entry swallows everything else
	if m.viewMode == ViewEdit {
		return m.handleEditKeys(msg)
	}
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	if msg.String() == "q" {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// lift runs a page command as a bubbletea command.
func (m Model) lift(cmd pages.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return cmd(ctx)
	}
}

func (m Model) controllers() []pages.Controller {
	return []pages.Controller{m.home, m.contacts, m.deals, m.activities}
}

func (m Model) page() pages.Controller {
	return m.controllers()[m.tab]
}

// switchTab unmounts the current page, so anything it still has in flight is
// ignored, and mounts the next one.
func (m Model) switchTab(tab Tab) (Model, tea.Cmd) {
	if tab == m.tab {
		return m, nil
	}
	m.page().Unmount()
	m.tab = tab
	m.viewMode = ViewList
	m.selectedRow = 0
	m.dealColumn = 0
	m.searching = false
	m.searchInput.Blur()
	return m, m.lift(m.page().Init())
}

// collectToasts moves queued notifications on screen and schedules their expiry.
func (m *Model) collectToasts() tea.Cmd {
	var cmds []tea.Cmd
	for _, t := range m.deps.Notifier.Drain() {
		m.toasts = append(m.toasts, t)
		id := t.ID
		cmds = append(cmds, tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
			return toastExpiredMsg{id: id}
		}))
	}
	return tea.Batch(cmds...)
}

func removeToast(toasts []pages.Toast, id string) []pages.Toast {
	out := toasts[:0:0]
	for _, t := range toasts {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) loading() bool {
	p := m.page()
	if p.Phase() == pages.PhaseLoading {
		return true
	}
	if b, ok := p.(interface{ Busy() bool }); ok {
		return b.Busy()
	}
	return false
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("28")).
				Padding(0, 1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("9")).
			Padding(0, 1)

	toastInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)
)
