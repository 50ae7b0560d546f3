package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// searchBranch is one entity kind of the search fan-out. Every branch
// returns the same columns: name, category, code, uuid, rank.
type searchBranch struct {
	render func(l Labels, rank int) string
}

// searchBranches is the fixed fan-out, in result order.
var searchBranches = []searchBranch{
	{
		render: func(l Labels, rank int) string {
			return fmt.Sprintf(`MATCH (s:%s)
WHERE toLower(s.name) CONTAINS toLower($searchTerm)
RETURN s.name AS name, '%s' AS category, s.code AS code, null AS uuid, %d AS rank`,
				l.Set, CategorySet, rank)
		},
	},
	{
		render: func(l Labels, rank int) string {
			return fmt.Sprintf(`MATCH (c:%s)
WHERE toLower(c.name) CONTAINS toLower($searchTerm)
RETURN c.name AS name, '%s' AS category, null AS code, c.uuid AS uuid, %d AS rank`,
				l.Card, CategoryCard, rank)
		},
	},
	{
		render: func(l Labels, rank int) string {
			return fmt.Sprintf(`MATCH (a:%s)
WHERE toLower(a.name) CONTAINS toLower($searchTerm)
OPTIONAL MATCH (c:%s)-[:%s]->(a)
WITH a, min(c.uuid) AS uuid
RETURN a.name AS name, '%s' AS category, null AS code, uuid, %d AS rank`,
				l.Artist, l.Card, RelHasArtist, CategoryArtist, rank)
		},
	},
}

// searchQuery unions every branch into one statement. Each branch carries its
// position as rank so the merged rows can be put back in branch order.
func (qb *queryBuilder) searchQuery(term string) Query {
	parts := make([]string, len(searchBranches))
	for i, branch := range searchBranches {
		parts[i] = branch.render(qb.labels, i)
	}
	return Query{
		Cypher: strings.Join(parts, "\nUNION ALL\n"),
		Params: map[string]any{"searchTerm": term},
	}
}

// mergeSearchRows maps union rows and orders them by branch, then by name.
// Rows without a name cannot be shown and are dropped.
func mergeSearchRows(rows []map[string]any) []SearchResult {
	type ranked struct {
		rank   int64
		result SearchResult
	}

	merged := make([]ranked, 0, len(rows))
	for _, row := range rows {
		name := stringPtr(row["name"])
		category := stringPtr(row["category"])
		if name == nil || category == nil {
			continue
		}
		rank, ok := toInt64(row["rank"])
		if !ok {
			rank = int64(len(searchBranches))
		}
		merged = append(merged, ranked{
			rank: rank,
			result: SearchResult{
				Name:     *name,
				Category: *category,
				Code:     stringPtr(row["code"]),
				UUID:     stringPtr(row["uuid"]),
			},
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].rank != merged[j].rank {
			return merged[i].rank < merged[j].rank
		}
		return merged[i].result.Name < merged[j].result.Name
	})

	results := make([]SearchResult, len(merged))
	for i, m := range merged {
		results[i] = m.result
	}
	return results
}
