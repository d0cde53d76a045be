// ABOUTME: Contact detail view for TUI
// ABOUTME: Shows one contact with the deals and activities that reference it
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/viz"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CONTACT DETAILS"))
	s.WriteString("\n\n")

	d := m.contacts.Details()
	if d == nil {
		s.WriteString(mutedStyle.Render("Contact not found"))
		s.WriteString("\n\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	c := d.Contact
	s.WriteString(m.renderField("Name", c.Name))
	s.WriteString(m.renderField("Email", c.Email))
	s.WriteString(m.renderField("Phone", c.Phone))
	s.WriteString(m.renderField("Company", c.Company))
	s.WriteString(m.renderField("Position", c.Position))
	s.WriteString(m.renderField("Status", c.Status.Label()))
	if c.LastContact != nil {
		s.WriteString(m.renderField("Last Contact", c.LastContact.Format(models.DateLayout)))
	}

	if d.Loading {
		s.WriteString("\n")
		s.WriteString(m.spinner.View() + " Loading deals and activities...")
		s.WriteString("\n\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	// Related deals
	s.WriteString("\n")
	s.WriteString(sectionStyle.Render(fmt.Sprintf("DEALS (%d)", len(d.Deals))))
	s.WriteString("\n")
	if len(d.Deals) == 0 {
		s.WriteString(mutedStyle.Render("  No deals"))
		s.WriteString("\n")
	}
	for _, deal := range d.Deals {
		s.WriteString(fmt.Sprintf("  • %s  %s  %s\n", deal.Title, viz.FormatMoney(deal.Value), deal.Stage.Label()))
	}

	// Related activities
	s.WriteString("\n")
	s.WriteString(sectionStyle.Render(fmt.Sprintf("ACTIVITIES (%d)", len(d.Activities))))
	s.WriteString("\n")
	if len(d.Activities) == 0 {
		s.WriteString(mutedStyle.Render("  No activities"))
		s.WriteString("\n")
	}
	for _, a := range d.Activities {
		s.WriteString(fmt.Sprintf("  • [%s] %s: %s\n", a.Date.Format(models.DateLayout), a.Type, a.Description))
	}

	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"e: Edit",
		"x: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.contacts.Details()

	switch msg.String() {
	case "esc":
		m.contacts.CloseDetails()
		m.viewMode = ViewList
	case "e":
		if d != nil {
			id := d.Contact.ID
			m.contacts.CloseDetails()
			m.openEditForm(id)
		}
	case "x", "delete":
		if d != nil {
			m.deleteID = d.Contact.ID
			m.contacts.CloseDetails()
			m.viewMode = ViewConfirmDelete
		}
	}

	return m, nil
}
