package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func f64p(f float64) *float64 { return &f }

func TestParseColorName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   ColorMatch
		wantOK bool
	}{
		{name: "comma list is any-of", input: "W,U", want: ColorMatch{Codes: []string{"W", "U"}, Any: true}, wantOK: true},
		{name: "comma list trims and drops empty tokens", input: " W , U ,", want: ColorMatch{Codes: []string{"W", "U"}, Any: true}, wantOK: true},
		{name: "comma list keeps multi-letter names", input: "White,Blue", want: ColorMatch{Codes: []string{"White", "Blue"}, Any: true}, wantOK: true},
		{name: "run-together codes are all-of", input: "WU", want: ColorMatch{Codes: []string{"W", "U"}}, wantOK: true},
		{name: "repeated codes collapse", input: "WWU", want: ColorMatch{Codes: []string{"W", "U"}}, wantOK: true},
		{name: "single code", input: "G", want: ColorMatch{Codes: []string{"G"}}, wantOK: true},
		{name: "inner spaces are not codes", input: "W U", want: ColorMatch{Codes: []string{"W", "U"}}, wantOK: true},
		{name: "empty", input: ""},
		{name: "blank", input: "   "},
		{name: "only separators", input: ", ,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseColorName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCompileCardFilter_Empty(t *testing.T) {
	ps := CompileCardFilter(CardFilter{}, "c", DefaultLabels())

	assert.Empty(t, ps)
	assert.Equal(t, "", ps.Where())
	assert.Empty(t, ps.Params())
}

func TestCompileCardFilter_AllFilters(t *testing.T) {
	filter := CardFilter{
		ManaValue: f64p(3),
		Rarity:    strp("rare"),
		Type:      strp("Creature"),
		ColorName: strp("W,U"),
	}

	ps := CompileCardFilter(filter, "c", DefaultLabels())
	require.Len(t, ps, 4)

	where := ps.Where()
	assert.Equal(t, "WHERE c.manaValue = $manaValue AND "+
		"toLower(c.rarity) CONTAINS toLower($rarity) AND "+
		"toLower(c.type) CONTAINS toLower($type) AND "+
		"EXISTS { MATCH (c)-[:HAS_COLOR]->(anyColor:Color) WHERE anyColor.name IN $colorsAny }", where)

	params := ps.Params()
	assert.Equal(t, 3.0, params["manaValue"])
	assert.Equal(t, "rare", params["rarity"])
	assert.Equal(t, "Creature", params["type"])
	assert.Equal(t, []string{"W", "U"}, params["colorsAny"])
}

func TestCompileCardFilter_AllOfColors(t *testing.T) {
	ps := CompileCardFilter(CardFilter{ColorName: strp("WU")}, "c", DefaultLabels())
	require.Len(t, ps, 1)

	assert.Equal(t, "ALL(code IN $colorsAll WHERE EXISTS { MATCH (c)-[:HAS_COLOR]->(:Color {name: code}) })", ps[0].Clause)
	assert.Equal(t, []string{"W", "U"}, ps.Params()["colorsAll"])
	assert.NotContains(t, ps.Params(), "colorsAny")
}

func TestCompileCardFilter_BlankFiltersAreIgnored(t *testing.T) {
	ps := CompileCardFilter(CardFilter{
		Rarity:    strp(""),
		Type:      strp("  "),
		ColorName: strp(","),
	}, "c", DefaultLabels())

	assert.Empty(t, ps)
}

func TestCompileCardFilter_ValuesAreBoundNotInlined(t *testing.T) {
	hostile := "rare') DETACH DELETE c //"
	ps := CompileCardFilter(CardFilter{Rarity: strp(hostile), Type: strp(hostile)}, "c", DefaultLabels())

	assert.NotContains(t, ps.Where(), "DETACH")
	assert.Equal(t, hostile, ps.Params()["rarity"])
}

func TestCompileCardFilter_SubsetsJoinIndependently(t *testing.T) {
	ps := CompileCardFilter(CardFilter{Type: strp("Elf"), ColorName: strp("G")}, "c", DefaultLabels())
	require.Len(t, ps, 2)

	assert.Equal(t, "WHERE toLower(c.type) CONTAINS toLower($type) AND "+
		"ALL(code IN $colorsAll WHERE EXISTS { MATCH (c)-[:HAS_COLOR]->(:Color {name: code}) })", ps.Where())
	assert.Len(t, ps.Params(), 2)
}
