// ABOUTME: Visualization CLI commands
// ABOUTME: Renders the deal pipeline graph as DOT or SVG
package cli

import (
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/harperreed/crmdash/viz"
)

func newVizCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Generate visualizations",
	}

	var output, format string
	pipeline := &cobra.Command{
		Use:   "pipeline",
		Short: "Render the deal pipeline graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var gvFormat graphviz.Format
			switch format {
			case "dot":
				gvFormat = graphviz.XDOT
			case "svg":
				gvFormat = graphviz.SVG
			default:
				return fmt.Errorf("invalid format %q: want dot or svg", format)
			}

			snap, err := rt.app.Services.Snapshot(cmd.Context())
			if err != nil {
				return err
			}

			generator := viz.NewGraphGenerator(snap.Contacts, snap.Deals)
			data, err := generator.RenderPipeline(cmd.Context(), gvFormat)
			if err != nil {
				return err
			}

			if output != "" {
				return os.WriteFile(output, data, 0644)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	pipeline.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	pipeline.Flags().StringVar(&format, "format", "dot", "output format: dot or svg")

	cmd.AddCommand(pipeline)
	return cmd
}
