package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardlore/cardlore/cmd/cardlore/internal"
	"github.com/cardlore/cardlore/internal/catalog"
)

var (
	queryArgs    []string
	queryTimeout time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query <operation>",
	Short: "Run one catalog operation and print the result",
	Long: `Run one catalog operation against the graph store.

Operations and their arguments:
  get-set         code
  get-card        uuid
  get-artist      name
  get-color       name [skip] [limit]
  get-rarity      name [skip] [limit]
  get-mana-value  value [skip] [limit]
  list-cards      [manaValue] [rarity] [type] [colorName] [skip] [limit]
  search          searchTerm

Examples:
  cardlore query get-set --arg code=LEA
  cardlore query list-cards --arg colorName=R,G --arg limit=10 -o json
  cardlore query search --arg searchTerm=bolt`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeOperations,
	RunE:              runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVarP(&queryArgs, "arg", "a", nil, "Operation argument as key=value (repeatable)")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 30*time.Second, "Give up after this long (0 disables)")
}

// operationRunner runs a catalog operation by name.
type operationRunner interface {
	Dispatch(ctx context.Context, op string, args map[string]any) (any, error)
}

func runQuery(cmd *cobra.Command, args []string) error {
	op := args[0]
	if !knownOperation(op) {
		return internal.NewCLIError(internal.ExitInvalidInput,
			fmt.Sprintf("unknown operation %q (see 'cardlore query --help')", op))
	}
	opArgs, err := parseOperationArgs(queryArgs)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, queryTimeout)
		defer cancel()
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	return executeOperation(ctx, a.dispatcher, cmd.OutOrStdout(), op, opArgs, globalFlags.Format())
}

// executeOperation runs op and prints its result. Search results are shown
// as a table in text mode.
func executeOperation(ctx context.Context, runner operationRunner, w io.Writer, op string, args map[string]any, format internal.OutputFormat) error {
	result, err := runner.Dispatch(ctx, op, args)
	if err != nil {
		return err
	}

	formatter := internal.NewFormatter(format, w)
	if results, ok := result.([]catalog.SearchResult); ok && format == internal.FormatText {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{r.Name, r.Category, deref(r.Code), deref(r.UUID)})
		}
		return formatter.PrintTable([]string{"name", "category", "code", "uuid"}, rows)
	}
	return formatter.PrintData(result)
}

// parseOperationArgs turns key=value pairs into an argument bag. Values stay
// strings; the dispatcher converts numbers.
func parseOperationArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, internal.NewCLIError(internal.ExitInvalidInput,
				fmt.Sprintf("invalid --arg %q (expected key=value)", pair))
		}
		args[key] = value
	}
	return args, nil
}

func knownOperation(op string) bool {
	for _, known := range catalog.Operations() {
		if string(known) == op {
			return true
		}
	}
	return false
}

func completeOperations(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, op := range catalog.Operations() {
		if strings.HasPrefix(string(op), toComplete) {
			names = append(names, string(op))
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
