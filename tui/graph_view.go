// ABOUTME: Graphviz pipeline view for the TUI
// ABOUTME: Shows the DOT source of the deal pipeline graph
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/crmdash/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("PIPELINE GRAPH"))
	s.WriteString("\n\n")

	// DOT source (scrollable in future)
	if m.graphDOT == "" {
		s.WriteString(m.spinner.View() + " Generating graph...\n")
	} else {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.graphDOT))
	}

	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.graphDOT = ""
	}

	return m, nil
}

// generateGraph renders the pipeline from the deals page's current view state.
func (m Model) generateGraph() tea.Cmd {
	generator := viz.NewGraphGenerator(m.deals.Contacts(), m.deals.All())
	ctx := m.ctx
	return func() tea.Msg {
		dot, err := generator.GeneratePipelineGraph(ctx)
		return graphMsg{dot: dot, err: err}
	}
}
