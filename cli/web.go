// ABOUTME: Web UI subcommand
// ABOUTME: Serves the read-only web dashboard until interrupted
package cli

import (
	"github.com/spf13/cobra"

	"github.com/harperreed/crmdash/web"
)

func newWebCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the read-only web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := web.NewServer(rt.app.Services, rt.logger, rt.app.Registry)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context(), rt.cfg.Web.Addr)
		},
	}
	cmd.Flags().String("addr", "localhost:8080", "listen address")
	return cmd
}
