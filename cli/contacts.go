// ABOUTME: Contact CLI commands
// ABOUTME: Lists contacts with the same search and status filter as the contacts screen
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
)

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newContactsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Work with contacts",
	}

	var query, status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := models.ContactStatus(status)
			if st != pages.StatusAll && !validContactStatus(st) {
				return fmt.Errorf("invalid status %q: want lead, qualified or customer", status)
			}

			contacts, err := rt.app.Services.Contacts.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			contacts = pages.FilterContacts(contacts, query, st)

			out := cmd.OutOrStdout()
			if len(contacts) == 0 {
				if query != "" || st != pages.StatusAll {
					fmt.Fprintln(out, "No contacts found")
				} else {
					fmt.Fprintln(out, "No contacts yet")
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tCOMPANY\tEMAIL\tSTATUS\tLAST CONTACT\tID")
			_, _ = fmt.Fprintln(w, "----\t-------\t-----\t------\t------------\t--")
			for _, c := range contacts {
				last := "-"
				if c.LastContact != nil {
					last = c.LastContact.Format(models.DateLayout)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.Name, dash(c.Company), dash(c.Email), c.Status.Label(), last, c.ID)
			}
			_ = w.Flush()

			fmt.Fprintf(out, "\nTotal: %d contact(s)\n", len(contacts))
			return nil
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "match name, email or company")
	list.Flags().StringVar(&status, "status", "", "filter by status: lead, qualified or customer")

	cmd.AddCommand(list)
	return cmd
}

func validContactStatus(s models.ContactStatus) bool {
	for _, st := range models.ContactStatuses {
		if st == s {
			return true
		}
	}
	return false
}
