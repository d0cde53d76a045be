// ABOUTME: Root cobra command and shared runtime for every subcommand
// ABOUTME: Resolves config, builds the logger and the application before a command runs
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/harperreed/crmdash/app"
	"github.com/harperreed/crmdash/config"
	"github.com/harperreed/crmdash/logging"
)

// runtime is the state built once per invocation.
type runtime struct {
	version string

	configPath string
	noDelay    bool

	cfg    *config.Config
	logger *zap.Logger
	app    *app.App
}

// NewRootCommand builds the crmdash command tree. Callers that execute it
// themselves should prefer Execute, which also releases the application.
func NewRootCommand(version string) *cobra.Command {
	root, _ := newRoot(version)
	return root
}

func newRoot(version string) (*cobra.Command, *runtime) {
	rt := &runtime{version: version}

	root := &cobra.Command{
		Use:   "crmdash",
		Short: "Terminal CRM dashboard over a seeded in-memory store",
		Long: `crmdash is a small CRM: contacts, a deal pipeline and an activity log.

Data is seeded at startup and lives only as long as the process.
Run without arguments to start the interactive dashboard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTUI(cmd.Context(), cmd.OutOrStdout())
		},
	}
	root.SetVersionTemplate("crmdash version {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/crmdash/config.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.BoolVar(&rt.noDelay, "no-delay", false, "disable simulated service latency")
	flags.String("backend", config.BackendMemory, "store backend: memory or sqlite")

	root.AddCommand(
		newTUICommand(rt),
		newDashboardCommand(rt),
		newContactsCommand(rt),
		newDealsCommand(rt),
		newActivitiesCommand(rt),
		newVizCommand(rt),
		newMCPCommand(rt),
		newWebCommand(rt),
	)

	return root, rt
}

// Execute runs the command tree with ctx. The application is closed whether
// or not the command succeeds.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) error {
	root, rt := newRoot(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return rt.execute(ctx, root)
}

func (rt *runtime) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	return errors.Join(err, rt.teardown())
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(rt.configPath, map[string]*pflag.Flag{
		config.KeyLogLevel: flags.Lookup("log-level"),
		config.KeyBackend:  flags.Lookup("backend"),
		config.KeyWebAddr:  flags.Lookup("addr"),
	})
	if err != nil {
		return err
	}
	rt.cfg = cfg

	// The TUI owns the terminal, so it logs to a file.
	logFile := ""
	if cmd == cmd.Root() || cmd.Name() == "tui" {
		logFile = cfg.Log.File
	}
	rt.logger, err = logging.New(cfg.Log.Level, logFile)
	if err != nil {
		return err
	}

	rt.app, err = app.New(cfg, rt.logger, rt.noDelay)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	return nil
}

// teardown is safe to call when setup never ran or stopped part way.
func (rt *runtime) teardown() error {
	var err error
	if rt.app != nil {
		err = rt.app.Close()
	}
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
	return err
}
