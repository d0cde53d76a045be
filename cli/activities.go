// ABOUTME: Activity CLI commands
// ABOUTME: Lists the activity log, optionally filtered by type
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/viz"
)

func newActivitiesCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Work with the activity log",
	}

	var typ string
	list := &cobra.Command{
		Use:   "list",
		Short: "List activities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := models.ActivityType(typ)
			if t != pages.TypeAll && !validActivityType(t) {
				return fmt.Errorf("invalid type %q: want call, email, meeting or note", typ)
			}

			snap, err := rt.app.Services.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			names := viz.ContactNames(snap.Contacts)
			titles := make(map[string]string, len(snap.Deals))
			for _, d := range snap.Deals {
				titles[d.ID] = d.Title
			}

			activities := pages.FilterActivities(snap.Activities, t)
			out := cmd.OutOrStdout()
			if len(activities) == 0 {
				if t == pages.TypeAll {
					fmt.Fprintln(out, "No activities yet")
				} else {
					fmt.Fprintf(out, "No %s activities\n", t)
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "DATE\tTYPE\tCONTACT\tDEAL\tMIN\tDESCRIPTION")
			_, _ = fmt.Fprintln(w, "----\t----\t-------\t----\t---\t-----------")
			for _, a := range activities {
				deal := "-"
				if a.DealID != "" {
					deal = titles[a.DealID]
					if deal == "" {
						deal = "Unknown Deal"
					}
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					a.Date.Format(models.DateLayout), a.Type, viz.ContactName(names, a.ContactID),
					deal, a.Duration, strings.ReplaceAll(a.Description, "\n", " "))
			}
			_ = w.Flush()

			fmt.Fprintf(out, "\nTotal: %d activit%s\n", len(activities), plural(len(activities), "y", "ies"))
			return nil
		},
	}
	list.Flags().StringVar(&typ, "type", "", "filter by type: call, email, meeting or note")

	cmd.AddCommand(list)
	return cmd
}

func validActivityType(t models.ActivityType) bool {
	for _, at := range models.ActivityTypes {
		if at == t {
			return true
		}
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
