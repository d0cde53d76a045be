// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Asks before removing a contact, deal, or activity
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmdash/models"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// deleteTarget names the record awaiting confirmation.
func (m Model) deleteTarget() (kind, name string) {
	switch m.tab {
	case TabContacts:
		for _, c := range m.contacts.All() {
			if c.ID == m.deleteID {
				return "contact", c.Name
			}
		}
		return "contact", m.deleteID
	case TabDeals:
		for _, d := range m.deals.All() {
			if d.ID == m.deleteID {
				return "deal", d.Title
			}
		}
		return "deal", m.deleteID
	case TabActivities:
		for _, a := range m.activities.All() {
			if a.ID == m.deleteID {
				return "activity", activityTitle(a)
			}
		}
		return "activity", m.deleteID
	}
	return "record", m.deleteID
}

func activityTitle(a models.Activity) string {
	if len(a.Description) > 40 {
		return a.Description[:37] + "..."
	}
	return a.Description
}

func (m Model) renderConfirmDeleteView() string {
	kind, name := m.deleteTarget()

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := fmt.Sprintf("Are you sure you want to delete this %s?", kind)
	entityInfo := fmt.Sprintf("\n%s: %s\n", strings.ToUpper(kind), name)
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	)

	box := confirmBoxStyle.Render(content)

	// Center the box on screen
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		cmd := m.performDelete()
		m.deleteID = ""
		m.viewMode = ViewList
		return m, cmd
	case "n", "N", "esc":
		m.deleteID = ""
		m.viewMode = ViewList
	}

	return m, nil
}

func (m Model) performDelete() tea.Cmd {
	switch m.tab {
	case TabContacts:
		return m.lift(m.contacts.Delete(m.deleteID))
	case TabDeals:
		return m.lift(m.deals.Delete(m.deleteID))
	case TabActivities:
		return m.lift(m.activities.Delete(m.deleteID))
	}
	return nil
}
