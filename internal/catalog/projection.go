package catalog

import (
	"fmt"
	"strings"
)

// Direction is the direction of a traversal from the projected node.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// FoldKind is how the related values of one traversal are aggregated.
type FoldKind string

const (
	// FoldFirst keeps at most one related value. The smallest value is taken
	// so a duplicated edge cannot make the result depend on row order.
	FoldFirst FoldKind = "first"
	// FoldDistinctList keeps every related value once.
	FoldDistinctList FoldKind = "distinctList"
)

// Fold declares one optional traversal from the projected node and how its
// matches become an output field.
type Fold struct {
	Relationship   string
	Direction      Direction
	TargetLabel    string
	TargetProperty string
	Kind           FoldKind
	Field          string
}

// Property copies one node property into the output map.
type Property struct {
	Field string
	Name  string
}

// Projection describes how a node is flattened into one output map.
type Projection struct {
	Properties []Property
	Folds      []Fold
}

// pattern renders the traversal of f starting at variable v, binding the
// related node to target.
func (f Fold) pattern(v, label, target string) string {
	if f.Direction == Incoming {
		return fmt.Sprintf("(%s)<-[:%s]-(%s:%s)", v, f.Relationship, target, label)
	}
	return fmt.Sprintf("(%s)-[:%s]->(%s:%s)", v, f.Relationship, target, label)
}

func (f Fold) aggregate(target string) string {
	value := target + "." + f.TargetProperty
	if f.Kind == FoldFirst {
		return fmt.Sprintf("min(%s)", value)
	}
	return fmt.Sprintf("collect(DISTINCT %s)", value)
}

// foldVar is the Cypher variable holding the folded value of f for node v.
func foldVar(v string, f Fold) string {
	return v + "_" + f.Field
}

// Traversals renders one OPTIONAL MATCH and aggregating WITH per fold. Each
// WITH groups by carry, the node variable v and the folds already computed,
// so the row count per node stays one and every later clause can still see
// the carried variables. When v is null the folds yield null and [] rather
// than dropping the row.
func (p Projection) Traversals(v string, carry ...string) string {
	var b strings.Builder
	kept := append(append([]string{}, carry...), v)

	for i, f := range p.Folds {
		target := fmt.Sprintf("%s_f%d", v, i)
		fmt.Fprintf(&b, "OPTIONAL MATCH %s\n", f.pattern(v, f.TargetLabel, target))
		fmt.Fprintf(&b, "WITH %s, %s AS %s\n",
			strings.Join(kept, ", "), f.aggregate(target), foldVar(v, f))
		kept = append(kept, foldVar(v, f))
	}
	return b.String()
}

// MapExpr renders the output map for node v. It must follow Traversals for
// the same v.
func (p Projection) MapExpr(v string) string {
	entries := make([]string, 0, len(p.Properties)+len(p.Folds))
	for _, prop := range p.Properties {
		entries = append(entries, fmt.Sprintf("%s: %s.%s", prop.Field, v, prop.Name))
	}
	for _, f := range p.Folds {
		entries = append(entries, fmt.Sprintf("%s: %s", f.Field, foldVar(v, f)))
	}
	return "{" + strings.Join(entries, ", ") + "}"
}

// CollectExpr renders an aggregate of MapExpr that skips a null node, so an
// anchor without related cards yields [] and never [null].
func (p Projection) CollectExpr(v string) string {
	return fmt.Sprintf("collect(CASE WHEN %s IS NULL THEN null ELSE %s END)", v, p.MapExpr(v))
}

func summaryProperties() []Property {
	return []Property{
		{Field: "uuid", Name: "uuid"},
		{Field: "name", Name: "name"},
		{Field: "manaValue", Name: "manaValue"},
		{Field: "rarity", Name: "rarity"},
		{Field: "type", Name: "type"},
	}
}

func summaryFolds(l Labels) []Fold {
	return []Fold{
		{Relationship: RelHasColor, Direction: Outgoing, TargetLabel: l.Color, TargetProperty: "name", Kind: FoldDistinctList, Field: "colors"},
		{Relationship: RelHasArtist, Direction: Outgoing, TargetLabel: l.Artist, TargetProperty: "name", Kind: FoldFirst, Field: "artist"},
		{Relationship: RelHasKeyword, Direction: Outgoing, TargetLabel: l.Keyword, TargetProperty: "name", Kind: FoldDistinctList, Field: "keywords"},
		{Relationship: RelHasSubtype, Direction: Outgoing, TargetLabel: l.Subtype, TargetProperty: "name", Kind: FoldDistinctList, Field: "subtypes"},
		{Relationship: RelHasSupertype, Direction: Outgoing, TargetLabel: l.Supertype, TargetProperty: "name", Kind: FoldDistinctList, Field: "supertypes"},
	}
}

// CardSummaryProjection is the projection of cards nested in a set, an artist
// or a bucket.
func CardSummaryProjection(l Labels) Projection {
	return Projection{
		Properties: summaryProperties(),
		Folds:      summaryFolds(l),
	}
}

// CardDetailProjection is the projection of a card returned on its own.
func CardDetailProjection(l Labels) Projection {
	props := append(summaryProperties(),
		Property{Field: "convertedManaCost", Name: "convertedManaCost"},
		Property{Field: "power", Name: "power"},
		Property{Field: "toughness", Name: "toughness"},
		Property{Field: "flavorText", Name: "flavorText"},
		Property{Field: "hasFoil", Name: "hasFoil"},
		Property{Field: "hasNonFoil", Name: "hasNonFoil"},
		Property{Field: "borderColor", Name: "borderColor"},
		Property{Field: "frameVersion", Name: "frameVersion"},
		Property{Field: "originalText", Name: "originalText"},
		Property{Field: "scryfallId", Name: "scryfallId"},
	)
	folds := append(summaryFolds(l),
		Fold{Relationship: RelBelongsTo, Direction: Outgoing, TargetLabel: l.Set, TargetProperty: "code", Kind: FoldFirst, Field: "setCode"},
		Fold{Relationship: RelBelongsTo, Direction: Outgoing, TargetLabel: l.Set, TargetProperty: "name", Kind: FoldFirst, Field: "setName"},
	)
	return Projection{Properties: props, Folds: folds}
}
