// ABOUTME: Deal pipeline board for the TUI
// ABOUTME: One column per open stage plus closed-won; deals move between columns with [ and ]
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
	selectedCardStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	activeColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("170"))
)

func (m Model) renderPipelineBoard() string {
	var s strings.Builder

	s.WriteString(fmt.Sprintf("Total Pipeline: %s", viz.FormatMoney(m.deals.ActiveValue())))
	s.WriteString("\n\n")

	var cols []string
	for i, col := range m.deals.Columns() {
		var c strings.Builder
		c.WriteString(fmt.Sprintf("%s (%d)\n", col.Label(), col.Count))
		c.WriteString(mutedStyle.Render(viz.FormatMoney(col.Value)))
		c.WriteString("\n")

		if len(col.Deals) == 0 {
			c.WriteString("\n" + mutedStyle.Render("No deals"))
		}
		for j, d := range col.Deals {
			card := fmt.Sprintf("%s\n%s\n%s · %d%%\nClose %s",
				d.Title,
				m.deals.ContactName(d.ContactID),
				viz.FormatMoney(d.Value),
				d.Probability,
				d.ExpectedClose.Format("Jan 2, 2006"))
			if i == m.dealColumn && j == m.selectedRow {
				card = selectedCardStyle.Render(card)
			}
			c.WriteString("\n" + card + "\n")
		}

		style := columnStyle
		if i == m.dealColumn {
			style = activeColumnStyle
		}
		cols = append(cols, style.Render(c.String()))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))

	return s.String()
}

func (m Model) selectedDeal() (models.Deal, bool) {
	cols := m.deals.Columns()
	if m.dealColumn >= len(cols) {
		return models.Deal{}, false
	}
	deals := cols[m.dealColumn].Deals
	if m.selectedRow >= len(deals) {
		return models.Deal{}, false
	}
	return deals[m.selectedRow], true
}

func (m Model) handlePipelineKeys(key string) (tea.Model, tea.Cmd) {
	stages := viz.BoardStages()

	switch key {
	case "left", "h":
		if m.dealColumn > 0 {
			m.dealColumn--
			m.selectedRow = 0
		}
	case "right", "l":
		if m.dealColumn < len(stages)-1 {
			m.dealColumn++
			m.selectedRow = 0
		}
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "[", "]":
		d, ok := m.selectedDeal()
		if !ok {
			return m, nil
		}
		target := m.dealColumn - 1
		if key == "]" {
			target = m.dealColumn + 1
		}
		if target < 0 || target >= len(stages) {
			return m, nil
		}
		return m, m.lift(m.deals.MoveStage(d.ID, stages[target]))
	case "n":
		m.openNewForm()
	case "e":
		if d, ok := m.selectedDeal(); ok {
			m.openEditForm(d.ID)
		}
	case "x", "delete":
		if d, ok := m.selectedDeal(); ok {
			m.deleteID = d.ID
			m.viewMode = ViewConfirmDelete
		}
	case "g":
		m.viewMode = ViewGraph
		m.graphDOT = ""
		return m, m.generateGraph()
	}

	return m, nil
}
