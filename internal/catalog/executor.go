package catalog

import (
	"context"
	"fmt"

	"github.com/cardlore/cardlore/internal/graph"
	"github.com/cardlore/cardlore/internal/types"
)

// execute runs q on r and returns its rows. It does not interpret them.
// Failures keep their cause and are never retried.
func execute(ctx context.Context, r graph.Runner, op Operation, q Query) ([]map[string]any, error) {
	result, err := r.Run(ctx, q.Cypher, q.Params)
	if err != nil {
		return nil, types.WrapError(ErrCodeCatalogQueryFailed,
			fmt.Sprintf("%s query failed", op), err)
	}
	if result.Records == nil {
		return []map[string]any{}, nil
	}
	return result.Records, nil
}
