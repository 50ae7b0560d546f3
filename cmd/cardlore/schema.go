package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cardlore/cardlore/internal/gateway"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the GraphQL schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), gateway.SchemaSource())
		return err
	},
}
