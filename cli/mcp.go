// ABOUTME: MCP server subcommand
// ABOUTME: Serves the CRM tools, resources and prompts over stdio
package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/harperreed/crmdash/handlers"
)

func newMCPCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt.logger.Info("starting MCP server")
			server := handlers.NewServer(rt.app.Services, rt.version)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
