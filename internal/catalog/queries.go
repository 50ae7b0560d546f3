package catalog

import (
	"fmt"
	"strings"
)

// Query is a compiled Cypher statement and its parameters.
type Query struct {
	Cypher string
	Params map[string]any
}

// pageParams binds a page as int64 so the store never sees a float where it
// expects an integer.
func pageParams(page Page) map[string]any {
	return map[string]any{
		"skip":  int64(page.Skip),
		"limit": int64(page.Limit),
	}
}

// queryBuilder renders the Cypher of every operation for one label set.
type queryBuilder struct {
	labels  Labels
	summary Projection
	detail  Projection
}

func newQueryBuilder(l Labels) *queryBuilder {
	return &queryBuilder{
		labels:  l,
		summary: CardSummaryProjection(l),
		detail:  CardDetailProjection(l),
	}
}

// anchoredCards renders a query that matches an anchor node, then every card
// related to it, and returns the anchor with the projected cards. The cards
// are ordered by name then uuid. A missing anchor yields no row; an anchor
// with no cards yields one row with an empty list.
func (qb *queryBuilder) anchoredCards(anchor, cardPattern, returns string, paginate bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH %s\n", anchor)
	fmt.Fprintf(&b, "OPTIONAL MATCH %s\n", cardPattern)
	b.WriteString("WITH DISTINCT anchor, c\n")
	b.WriteString("ORDER BY c.name, c.uuid\n")

	carry := []string{"anchor"}
	if paginate {
		b.WriteString(paginateMembers("anchor"))
		carry = append(carry, "total")
	}

	b.WriteString(qb.summary.Traversals("c", carry...))
	fmt.Fprintf(&b, "WITH %s, %s AS cards\n", strings.Join(carry, ", "), qb.summary.CollectExpr("c"))
	fmt.Fprintf(&b, "RETURN %s", returns)
	return b.String()
}

// paginateMembers collects the ordered cards, counts them, slices one page and
// unwinds it back to one row per card. An empty page unwinds to a single null
// card so the grouping row survives.
func paginateMembers(carry ...string) string {
	prefix := ""
	if len(carry) > 0 {
		prefix = strings.Join(carry, ", ") + ", "
	}
	return fmt.Sprintf(`WITH %[1]scollect(c) AS members
WITH %[1]ssize(members) AS total, members[$skip..($skip + $limit)] AS page
UNWIND (CASE WHEN size(page) = 0 THEN [null] ELSE page END) AS c
`, prefix)
}

func (qb *queryBuilder) setQuery(code string) Query {
	cypher := qb.anchoredCards(
		fmt.Sprintf("(anchor:%s {code: $code})", qb.labels.Set),
		fmt.Sprintf("(c:%s)-[:%s]->(anchor)", qb.labels.Card, RelBelongsTo),
		"anchor.code AS code, anchor.name AS name, anchor.releaseDate AS releaseDate, "+
			"anchor.totalSetSize AS totalSetSize, anchor.type AS type, cards",
		false,
	)
	return Query{Cypher: cypher, Params: map[string]any{"code": code}}
}

func (qb *queryBuilder) artistQuery(name string) Query {
	cypher := qb.anchoredCards(
		fmt.Sprintf("(anchor:%s {name: $name})", qb.labels.Artist),
		fmt.Sprintf("(c:%s)-[:%s]->(anchor)", qb.labels.Card, RelHasArtist),
		"anchor.name AS name, cards",
		false,
	)
	return Query{Cypher: cypher, Params: map[string]any{"name": name}}
}

func (qb *queryBuilder) colorQuery(name string, page Page) Query {
	cypher := qb.anchoredCards(
		fmt.Sprintf("(anchor:%s {name: $name})", qb.labels.Color),
		fmt.Sprintf("(c:%s)-[:%s]->(anchor)", qb.labels.Card, RelHasColor),
		"anchor.name AS name, total, cards",
		true,
	)
	params := pageParams(page)
	params["name"] = name
	return Query{Cypher: cypher, Params: params}
}

// attributeBucket renders a bucket whose members share a card attribute
// instead of a related node. There is no anchor node, so the query always
// returns exactly one row and total tells whether the bucket exists.
func (qb *queryBuilder) attributeBucket(where, returns string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "OPTIONAL MATCH (c:%s)\n", qb.labels.Card)
	fmt.Fprintf(&b, "WHERE %s\n", where)
	b.WriteString("WITH c\n")
	b.WriteString("ORDER BY c.name, c.uuid\n")
	b.WriteString(paginateMembers())
	b.WriteString(qb.summary.Traversals("c", "total"))
	fmt.Fprintf(&b, "WITH total, %s AS cards\n", qb.summary.CollectExpr("c"))
	fmt.Fprintf(&b, "RETURN %s", returns)
	return b.String()
}

func (qb *queryBuilder) rarityQuery(name string, page Page) Query {
	cypher := qb.attributeBucket(
		"toLower(c.rarity) = toLower($name)",
		"$name AS name, total, cards",
	)
	params := pageParams(page)
	params["name"] = name
	return Query{Cypher: cypher, Params: params}
}

func (qb *queryBuilder) manaValueQuery(value float64, page Page) Query {
	cypher := qb.attributeBucket(
		"c.manaValue = $value",
		"$value AS manaValue, total, cards",
	)
	params := pageParams(page)
	params["value"] = value
	return Query{Cypher: cypher, Params: params}
}

func (qb *queryBuilder) cardQuery(uuid string) Query {
	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (c:%s {uuid: $uuid})\n", qb.labels.Card)
	b.WriteString("WITH c\n")
	b.WriteString("LIMIT 1\n")
	b.WriteString(qb.detail.Traversals("c"))
	fmt.Fprintf(&b, "RETURN %s AS card", qb.detail.MapExpr("c"))
	return Query{Cypher: b.String(), Params: map[string]any{"uuid": uuid}}
}

func (qb *queryBuilder) listCardsQuery(filter CardFilter) Query {
	predicates := CompileCardFilter(filter, "c", qb.labels)

	var b strings.Builder
	fmt.Fprintf(&b, "MATCH (c:%s)\n", qb.labels.Card)
	if where := predicates.Where(); where != "" {
		b.WriteString(where + "\n")
	}
	b.WriteString("WITH c\n")
	b.WriteString("ORDER BY c.name, c.uuid\n")
	b.WriteString("SKIP $skip\n")
	b.WriteString("LIMIT $limit\n")
	b.WriteString(qb.detail.Traversals("c"))
	fmt.Fprintf(&b, "RETURN %s AS card\n", qb.detail.MapExpr("c"))
	b.WriteString("ORDER BY c.name, c.uuid")

	params := predicates.Params()
	for k, v := range pageParams(filter.Page) {
		params[k] = v
	}
	return Query{Cypher: b.String(), Params: params}
}
