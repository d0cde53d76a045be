// ABOUTME: Interactive dashboard and text dashboard subcommands
// ABOUTME: Launches the Bubble Tea UI, or prints the dashboard when stdout is not a terminal
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/crmdash/tui"
	"github.com/harperreed/crmdash/viz"
)

func newTUICommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTUI(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newDashboardCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard metrics, pipeline and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.printDashboard(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (rt *runtime) runTUI(ctx context.Context, out io.Writer) error {
	if !isTerminal(out) {
		return rt.printDashboard(ctx, out)
	}

	model := tui.NewModel(rt.app.PageDeps(),
		tui.WithToastTTL(rt.cfg.UI.ToastTTL),
		tui.WithContext(ctx),
	)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func (rt *runtime) printDashboard(ctx context.Context, out io.Writer) error {
	snap, err := rt.app.Services.Snapshot(ctx)
	if err != nil {
		return err
	}
	stats := viz.GenerateDashboardStats(snap.Contacts, snap.Deals, snap.Activities)
	_, err = fmt.Fprint(out, viz.RenderDashboard(stats))
	return err
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
