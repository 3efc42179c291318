package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the feedsmith CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "feedsmith",
		Short:   "Product catalog feed reconciliation",
		Version: a.version,
		Long: `Feedsmith reconciles incompatible supplier feeds into a single
canonical product catalog.

The delimited text feed is imported as one atomic batch; the hierarchical
JSON feed is merged record by record on top of it. The resulting catalog
is queryable from the command line or over HTTP.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.feedsmith.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.StoreBackend, "store", a.config.StoreBackend, "catalog store backend: memory, files, postgres")
	rootCmd.PersistentFlags().StringVar(&a.config.FilesPath, "files-path", a.config.FilesPath, "catalog snapshot path for the files backend")
	rootCmd.PersistentFlags().StringVar(&a.config.DatabaseURL, "database-url", a.config.DatabaseURL, "connection URL for the postgres backend")

	rootCmd.SetVersionTemplate("feedsmith {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand runs before any command and reconciles flag values into
// the configuration, then reinitializes the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.CreateImportCommand())
	rootCmd.AddCommand(a.CreateProductsCommand())
	rootCmd.AddCommand(a.CreateServeCommand())
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError prints an error and exits with status 1. Meant for
// top-level error handling in main.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag does
// not exist. Only for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag does
// not exist. Only for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
