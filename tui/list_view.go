// ABOUTME: List screens for the TUI
// ABOUTME: Tabs, contact and activity tables, filters, and the shared chrome around every page
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/viz"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("CRMDASH"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderPage())
	s.WriteString("\n")

	if toasts := m.renderToasts(); toasts != "" {
		s.WriteString("\n")
		s.WriteString(toasts)
		s.WriteString("\n")
	}

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, tab)
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderPage() string {
	p := m.page()
	switch p.Phase() {
	case pages.PhaseLoading:
		return m.spinner.View() + " Loading " + strings.ToLower(tabNames[m.tab]) + "..."
	case pages.PhaseError:
		return errorStyle.Render("Unable to load "+strings.ToLower(tabNames[m.tab])) +
			"\n" + p.Err() + "\n\n" + mutedStyle.Render("Press r to try again")
	}

	var body string
	switch m.tab {
	case TabDashboard:
		body = m.renderDashboard()
	case TabContacts:
		body = m.renderContactsTable()
	case TabDeals:
		body = m.renderPipelineBoard()
	case TabActivities:
		body = m.renderActivitiesTable()
	}
	if m.loading() {
		body += "\n" + m.spinner.View() + " Saving..."
	}
	return body
}

func (m Model) renderToasts() string {
	var lines []string
	for _, t := range m.toasts {
		style := toastInfoStyle
		switch t.Level {
		case pages.LevelSuccess:
			style = toastSuccessStyle
		case pages.LevelError:
			style = toastErrorStyle
		}
		lines = append(lines, style.Render(t.Text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) tableHeight(rows int) int {
	h := m.height - 14
	if h < 3 {
		h = 3
	}
	if rows+1 < h {
		h = rows + 1
	}
	return h
}

func (m Model) renderContactsTable() string {
	var s strings.Builder

	// Search and filter bar
	if m.searching {
		s.WriteString(m.searchInput.View())
	} else if q := m.contacts.Search(); q != "" {
		s.WriteString(mutedStyle.Render("Search: " + q))
	} else {
		s.WriteString(mutedStyle.Render("Search: (press / to search)"))
	}
	status := "All Statuses"
	if f := m.contacts.StatusFilter(); f != pages.StatusAll {
		status = f.Label()
	}
	s.WriteString(mutedStyle.Render("   Status: " + status))
	s.WriteString("\n\n")

	contacts := m.contacts.Visible()
	if len(contacts) == 0 {
		s.WriteString(m.contacts.EmptyTitle())
		if m.contacts.Filtering() {
			s.WriteString("\n" + mutedStyle.Render("Try adjusting your search or filters"))
		} else {
			s.WriteString("\n" + mutedStyle.Render("Press n to add your first contact"))
		}
		return s.String()
	}

	columns := []table.Column{
		{Title: "Name", Width: 22},
		{Title: "Email", Width: 28},
		{Title: "Company", Width: 20},
		{Title: "Position", Width: 18},
		{Title: "Status", Width: 10},
		{Title: "Last Contact", Width: 14},
	}

	var rows []table.Row
	for _, c := range contacts {
		last := "Never"
		if c.LastContact != nil {
			last = c.LastContact.Format("Jan 2, 2006")
		}
		rows = append(rows, table.Row{
			c.Name,
			c.Email,
			c.Company,
			c.Position,
			c.Status.Label(),
			last,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight(len(rows))),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	s.WriteString(t.View())
	return s.String()
}

func (m Model) renderActivitiesTable() string {
	var s strings.Builder

	// Type filter chips with counts
	counts := m.activities.Counts()
	chips := []string{}
	filters := append([]models.ActivityType{pages.TypeAll}, models.ActivityTypes...)
	for _, typ := range filters {
		label := "All"
		if typ != pages.TypeAll {
			label = typ.Label()
		}
		chip := fmt.Sprintf("%s (%d)", label, counts[typ])
		if typ == m.activities.TypeFilter() {
			chips = append(chips, tabActiveStyle.Render(chip))
		} else {
			chips = append(chips, tabInactiveStyle.Render(chip))
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
	s.WriteString("\n\n")

	activities := m.activities.Visible()
	if len(activities) == 0 {
		s.WriteString(m.activities.EmptyTitle())
		if m.activities.TypeFilter() == pages.TypeAll {
			s.WriteString("\n" + mutedStyle.Render("Press n to log your first activity"))
		} else {
			s.WriteString("\n" + mutedStyle.Render("Try adjusting your filter or log a new activity"))
		}
		return s.String()
	}

	columns := []table.Column{
		{Title: "Type", Width: 8},
		{Title: "Description", Width: 32},
		{Title: "Contact", Width: 20},
		{Title: "Deal", Width: 22},
		{Title: "Date", Width: 12},
		{Title: "Duration", Width: 9},
	}

	var rows []table.Row
	for _, a := range activities {
		rows = append(rows, table.Row{
			string(a.Type),
			a.Description,
			m.activities.ContactName(a.ContactID),
			m.activities.DealTitle(a.DealID),
			a.Date.Format("Jan 2, 2006"),
			fmt.Sprintf("%dmin", a.Duration),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight(len(rows))),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	s.WriteString(t.View())
	return s.String()
}

func (m Model) renderListHelp() string {
	help := []string{"1-4/Tab: Switch tabs"}
	switch m.tab {
	case TabDashboard:
		help = append(help, "c: Quick contact", "d: Quick deal", "a: Quick activity")
	case TabContacts:
		help = append(help, "↑/↓: Navigate", "Enter: Details", "/: Search", "s: Status", "n: New", "e: Edit", "x: Delete")
	case TabDeals:
		help = append(help, "←/→ ↑/↓: Navigate", "[/]: Move stage", "n: New", "e: Edit", "x: Delete", "g: Graph")
	case TabActivities:
		help = append(help, "↑/↓: Navigate", "f: Type filter", "n: New", "e: Edit", "x: Delete")
	}
	if m.page().Phase() == pages.PhaseError {
		help = append(help, "r: Retry")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "1", "2", "3", "4":
		return m.switchTab(Tab(key[0] - '1'))
	case "tab":
		return m.switchTab((m.tab + 1) % Tab(len(tabNames)))
	case "shift+tab":
		return m.switchTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case "r":
		if m.page().Phase() == pages.PhaseError {
			return m, m.lift(m.page().Retry())
		}
		return m, nil
	}

	if m.page().Phase() != pages.PhaseReady {
		return m, nil
	}

	switch m.tab {
	case TabDashboard:
		return m.handleDashboardKeys(key)
	case TabDeals:
		return m.handlePipelineKeys(key)
	}

	switch key {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "n":
		m.openNewForm()
	case "e":
		if id := m.selectedID(); id != "" {
			m.openEditForm(id)
		}
	case "x", "delete":
		if id := m.selectedID(); id != "" {
			m.deleteID = id
			m.viewMode = ViewConfirmDelete
		}
	case "enter":
		if m.tab == TabContacts {
			if id := m.selectedID(); id != "" {
				cmd := m.lift(m.contacts.OpenDetails(id))
				m.viewMode = ViewDetail
				return m, cmd
			}
		}
	case "/":
		if m.tab == TabContacts {
			m.searching = true
			m.searchInput.SetValue(m.contacts.Search())
			cmd := m.searchInput.Focus()
			return m, cmd
		}
	case "s":
		if m.tab == TabContacts {
			m.contacts.SetStatusFilter(nextStatus(m.contacts.StatusFilter()))
			m.selectedRow = 0
		}
	case "f":
		if m.tab == TabActivities {
			m.activities.SetTypeFilter(nextType(m.activities.TypeFilter()))
			m.selectedRow = 0
		}
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.contacts.SetSearch(m.searchInput.Value())
	m.selectedRow = 0
	return m, cmd
}

func nextStatus(cur models.ContactStatus) models.ContactStatus {
	order := append([]models.ContactStatus{pages.StatusAll}, models.ContactStatuses...)
	for i, s := range order {
		if s == cur {
			return order[(i+1)%len(order)]
		}
	}
	return pages.StatusAll
}

func nextType(cur models.ActivityType) models.ActivityType {
	order := append([]models.ActivityType{pages.TypeAll}, models.ActivityTypes...)
	for i, t := range order {
		if t == cur {
			return order[(i+1)%len(order)]
		}
	}
	return pages.TypeAll
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabContacts:
		return len(m.contacts.Visible())
	case TabActivities:
		return len(m.activities.Visible())
	case TabDeals:
		cols := m.deals.Columns()
		if m.dealColumn < len(cols) {
			return len(cols[m.dealColumn].Deals)
		}
	}
	return 0
}

// selectedID returns the id of the highlighted record on the current tab.
func (m Model) selectedID() string {
	switch m.tab {
	case TabContacts:
		contacts := m.contacts.Visible()
		if m.selectedRow < len(contacts) {
			return contacts[m.selectedRow].ID
		}
	case TabActivities:
		activities := m.activities.Visible()
		if m.selectedRow < len(activities) {
			return activities[m.selectedRow].ID
		}
	case TabDeals:
		if d, ok := m.selectedDeal(); ok {
			return d.ID
		}
	}
	return ""
}

func (m *Model) clampSelection() {
	if n := m.rowCount(); m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) renderDashboard() string {
	var s strings.Builder

	// Metrics
	metrics := m.home.Metrics()
	boxes := []string{
		metricBox("Total Contacts", fmt.Sprintf("%d", metrics.TotalContacts)),
		metricBox("Active Deals", fmt.Sprintf("%d", metrics.ActiveDeals)),
		metricBox("Pipeline Value", viz.FormatMoney(metrics.PipelineValue)),
		metricBox("Conversion Rate", fmt.Sprintf("%d%%", metrics.ConversionRate)),
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	s.WriteString("\n\n")

	// Recent activities
	s.WriteString(titleStyle.Render("Recent Activities"))
	s.WriteString("\n")
	recent := m.home.Recent()
	if len(recent) == 0 {
		s.WriteString(mutedStyle.Render("No recent activities"))
		s.WriteString("\n")
	}
	for _, item := range recent {
		a := item.Activity
		s.WriteString(fmt.Sprintf("  %-7s %s\n", a.Type, a.Description))
		s.WriteString(mutedStyle.Render(fmt.Sprintf("          %s · %s · %dmin",
			item.Contact, a.Date.Format("Jan 2, 2006"), a.Duration)))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	// Pipeline overview
	s.WriteString(titleStyle.Render("Pipeline Overview"))
	s.WriteString("\n")
	names := viz.ContactNames(m.home.Contacts())
	var cols []string
	for _, stage := range m.home.Overview() {
		var c strings.Builder
		c.WriteString(fmt.Sprintf("%s (%d)\n", stage.Label(), stage.Count))
		c.WriteString(mutedStyle.Render(viz.FormatMoney(stage.Value)))
		c.WriteString("\n")
		for _, d := range stage.Deals {
			c.WriteString(fmt.Sprintf("\n%s\n%s\n%s · %d%%\n",
				d.Title, mutedStyle.Render(viz.ContactName(names, d.ContactID)), viz.FormatMoney(d.Value), d.Probability))
		}
		cols = append(cols, columnStyle.Render(c.String()))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))

	return s.String()
}

func metricBox(label, value string) string {
	return metricBoxStyle.Render(mutedStyle.Render(label) + "\n" + metricValueStyle.Render(value))
}

func (m Model) handleDashboardKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "c":
		return m, m.lift(m.home.QuickAdd(pages.QuickContact))
	case "d":
		return m, m.lift(m.home.QuickAdd(pages.QuickDeal))
	case "a":
		return m, m.lift(m.home.QuickAdd(pages.QuickActivity))
	}
	return m, nil
}

var (
	metricBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(20).
			MarginRight(1)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(24).
			MarginRight(1)
)
