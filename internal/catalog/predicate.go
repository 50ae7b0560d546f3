package catalog

import (
	"fmt"
	"strings"
)

// Predicate is one boolean Cypher fragment over the card variable together
// with the parameters it references. A fragment references only its own
// parameters, so any subset of predicates can be joined with AND.
type Predicate struct {
	Clause string
	Params map[string]any
}

// Predicates is an ordered conjunction.
type Predicates []Predicate

// Where renders the conjunction as a WHERE clause, or "" when empty.
func (ps Predicates) Where() string {
	if len(ps) == 0 {
		return ""
	}
	clauses := make([]string, len(ps))
	for i, p := range ps {
		clauses[i] = p.Clause
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}

// Params merges the parameters of every predicate.
func (ps Predicates) Params() map[string]any {
	params := make(map[string]any)
	for _, p := range ps {
		for k, v := range p.Params {
			params[k] = v
		}
	}
	return params
}

// ColorMatch is the parsed form of a colorName filter.
type ColorMatch struct {
	// Codes are the requested color codes in first-seen order, without
	// duplicates.
	Codes []string
	// Any is true when a card needs at least one of Codes, false when it
	// needs all of them.
	Any bool
}

// ParseColorName decodes the colorName filter. A value containing a comma is
// split on commas and each trimmed token is a color name that may match
// (OR). Any other value is read one character per color code and a card must
// carry every code (AND), so "WU" means white and blue. Blank values and
// values with no tokens impose no constraint and return ok=false.
func ParseColorName(colorName string) (ColorMatch, bool) {
	trimmed := strings.TrimSpace(colorName)
	if trimmed == "" {
		return ColorMatch{}, false
	}

	var tokens []string
	anyMatch := strings.Contains(trimmed, ",")
	if anyMatch {
		tokens = strings.Split(trimmed, ",")
	} else {
		for _, r := range trimmed {
			tokens = append(tokens, string(r))
		}
	}

	seen := make(map[string]struct{}, len(tokens))
	codes := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		codes = append(codes, token)
	}
	if len(codes) == 0 {
		return ColorMatch{}, false
	}
	return ColorMatch{Codes: codes, Any: anyMatch}, true
}

// CompileCardFilter turns the optional filters into predicates over card
// variable v. Omitted or blank filters add nothing. User values are always
// bound as parameters.
func CompileCardFilter(filter CardFilter, v string, l Labels) Predicates {
	var ps Predicates

	if filter.ManaValue != nil {
		ps = append(ps, Predicate{
			Clause: fmt.Sprintf("%s.manaValue = $manaValue", v),
			Params: map[string]any{"manaValue": *filter.ManaValue},
		})
	}
	if present(filter.Rarity) {
		ps = append(ps, Predicate{
			Clause: fmt.Sprintf("toLower(%s.rarity) CONTAINS toLower($rarity)", v),
			Params: map[string]any{"rarity": *filter.Rarity},
		})
	}
	if present(filter.Type) {
		ps = append(ps, Predicate{
			Clause: fmt.Sprintf("toLower(%s.type) CONTAINS toLower($type)", v),
			Params: map[string]any{"type": *filter.Type},
		})
	}
	if filter.ColorName != nil {
		if match, ok := ParseColorName(*filter.ColorName); ok {
			ps = append(ps, colorPredicate(match, v, l))
		}
	}
	return ps
}

// present reports whether an optional string filter constrains anything.
func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func colorPredicate(match ColorMatch, v string, l Labels) Predicate {
	if match.Any {
		return Predicate{
			Clause: fmt.Sprintf("EXISTS { MATCH (%s)-[:%s]->(anyColor:%s) WHERE anyColor.name IN $colorsAny }",
				v, RelHasColor, l.Color),
			Params: map[string]any{"colorsAny": match.Codes},
		}
	}
	return Predicate{
		Clause: fmt.Sprintf("ALL(code IN $colorsAll WHERE EXISTS { MATCH (%s)-[:%s]->(:%s {name: code}) })",
			v, RelHasColor, l.Color),
		Params: map[string]any{"colorsAll": match.Codes},
	}
}
