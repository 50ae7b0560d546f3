package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cardlore/cardlore/cmd/cardlore/internal"
	"github.com/cardlore/cardlore/internal/config"
	"github.com/cardlore/cardlore/internal/observability"
)

var (
	// cfg is loaded before any command that needs it runs.
	cfg *config.Config
	// logger writes structured logs to stderr.
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "cardlore",
	Short: "cardlore - card catalog query service over Neo4j",
	Long: `cardlore serves a read-only catalog of trading card sets, printings,
artists and colors stored in a Neo4j graph.

Run 'cardlore serve' to start the GraphQL API or 'cardlore query' to run a
single catalog operation from the shell.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig loads configuration and sets up logging before a command runs.
func loadConfig(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	if !needsConfig(cmd) {
		return nil
	}

	loader := config.NewConfigLoader(config.NewValidator())
	var loaded *config.Config
	if flags.ConfigFile != "" {
		loaded, err = loader.Load(flags.ConfigFile)
	} else {
		loaded, err = loader.LoadWithDefaults(config.DefaultConfigPath())
	}
	if err != nil {
		return err
	}

	if level := flags.LogLevel(); level != "" {
		loaded.Logging.Level = level
	}
	l, err := observability.NewLogger(os.Stderr, loaded.Logging)
	if err != nil {
		return internal.WrapError(internal.ExitConfigError, "invalid logging configuration", err)
	}

	cfg = loaded
	logger = l
	slog.SetDefault(l)
	return nil
}

// needsConfig reports whether cmd or one of its parents touches the store.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "schema", "completion", cobra.ShellCompRequestCmd:
			return false
		}
	}
	return true
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
