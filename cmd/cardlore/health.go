package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardlore/cardlore/cmd/cardlore/internal"
	"github.com/cardlore/cardlore/internal/types"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to the graph store",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	once := *cfg
	once.Neo4j.ConnectAttempts = 1
	client, err := connectGraph(ctx, &once, logger)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	formatter := internal.NewFormatter(globalFlags.Format(), cmd.OutOrStdout())
	return reportHealth(formatter, globalFlags.Format(), client.Health(ctx))
}

// reportHealth prints status and fails when the store is unhealthy.
func reportHealth(formatter internal.Formatter, format internal.OutputFormat, status types.HealthStatus) error {
	var err error
	if format == internal.FormatText {
		msg := fmt.Sprintf("graph store %s: %s (%dms)", status.State, status.Message, status.Latency.Milliseconds())
		if status.IsHealthy() {
			err = formatter.PrintSuccess(msg)
		} else {
			err = formatter.PrintError(msg)
		}
	} else {
		err = formatter.PrintData(status)
	}
	if err != nil {
		return err
	}

	if !status.IsHealthy() {
		return internal.NewCLIError(internal.ExitGraphError, "graph store is unhealthy")
	}
	return nil
}
