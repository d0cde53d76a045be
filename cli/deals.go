// ABOUTME: Deal CLI commands
// ABOUTME: Lists deals with their contact, value and stage
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/viz"
)

func newDealsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Work with deals",
	}

	var stage string
	list := &cobra.Command{
		Use:   "list",
		Short: "List deals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := models.Stage(stage)
			if stage != "" && !validStage(st) {
				return fmt.Errorf("invalid stage %q", stage)
			}

			snap, err := rt.app.Services.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			names := viz.ContactNames(snap.Contacts)

			var deals []models.Deal
			for _, d := range snap.Deals {
				if stage == "" || d.Stage == st {
					deals = append(deals, d)
				}
			}

			out := cmd.OutOrStdout()
			if len(deals) == 0 {
				fmt.Fprintln(out, "No deals found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TITLE\tCONTACT\tVALUE\tSTAGE\tPROB\tCLOSE\tID")
			_, _ = fmt.Fprintln(w, "-----\t-------\t-----\t-----\t----\t-----\t--")

			var total float64
			for _, d := range deals {
				total += d.Value
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\t%s\n",
					d.Title, viz.ContactName(names, d.ContactID), viz.FormatMoney(d.Value),
					d.Stage.Label(), d.Probability, d.ExpectedClose, d.ID)
			}
			_ = w.Flush()

			fmt.Fprintf(out, "\nTotal: %d deal(s) - %s\n", len(deals), viz.FormatMoney(total))
			return nil
		},
	}
	list.Flags().StringVar(&stage, "stage", "", "filter by stage: lead, qualified, proposal, negotiation, closed-won or closed-lost")

	cmd.AddCommand(list)
	return cmd
}

func validStage(s models.Stage) bool {
	for _, st := range models.DealStages {
		if st == s {
			return true
		}
	}
	return false
}
