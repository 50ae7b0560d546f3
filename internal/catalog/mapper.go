package catalog

import (
	"fmt"
	"math"
	"sort"
)

// toInt64 converts the numeric types the driver or a decoder may produce.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// textPtr accepts strings and store temporal values, which render as ISO
// text.
func textPtr(v any) *string {
	switch t := v.(type) {
	case string:
		return &t
	case fmt.Stringer:
		s := t.String()
		return &s
	default:
		return nil
	}
}

func int64Ptr(v any) *int64 {
	n, ok := toInt64(v)
	if !ok {
		return nil
	}
	return &n
}

func float64Ptr(v any) *float64 {
	n, ok := toFloat64(v)
	if !ok {
		return nil
	}
	return &n
}

func boolPtr(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

// stringList returns the strings of a store list once each, in first-seen
// order. Nulls are dropped and the result is never nil.
func stringList(v any) []string {
	out := []string{}
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	default:
		return out
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// mapCard converts a projected card map. It reports false for maps without a
// uuid, which is how an absent card shows up in a fold.
func mapCard(v any) (Card, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Card{}, false
	}
	uuid, ok := m["uuid"].(string)
	if !ok || uuid == "" {
		return Card{}, false
	}

	card := Card{
		UUID:              uuid,
		ManaValue:         float64Ptr(m["manaValue"]),
		ConvertedManaCost: float64Ptr(m["convertedManaCost"]),
		Rarity:            stringPtr(m["rarity"]),
		Type:              stringPtr(m["type"]),
		Power:             stringPtr(m["power"]),
		Toughness:         stringPtr(m["toughness"]),
		FlavorText:        stringPtr(m["flavorText"]),
		HasFoil:           boolPtr(m["hasFoil"]),
		HasNonFoil:        boolPtr(m["hasNonFoil"]),
		BorderColor:       stringPtr(m["borderColor"]),
		FrameVersion:      stringPtr(m["frameVersion"]),
		OriginalText:      stringPtr(m["originalText"]),
		ScryfallID:        stringPtr(m["scryfallId"]),
		Artist:            stringPtr(m["artist"]),
		SetCode:           stringPtr(m["setCode"]),
		SetName:           stringPtr(m["setName"]),
		Colors:            stringList(m["colors"]),
		Keywords:          stringList(m["keywords"]),
		Subtypes:          stringList(m["subtypes"]),
		Supertypes:        stringList(m["supertypes"]),
	}
	if name, ok := m["name"].(string); ok {
		card.Name = name
	}
	return card, true
}

// mapCards converts a collected card list. Entries without a uuid and repeated
// uuids are dropped, and the result is ordered by name then uuid. The result
// is never nil.
func mapCards(v any) []Card {
	cards := []Card{}
	items, ok := v.([]any)
	if !ok {
		return cards
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		card, ok := mapCard(item)
		if !ok {
			continue
		}
		if _, dup := seen[card.UUID]; dup {
			continue
		}
		seen[card.UUID] = struct{}{}
		cards = append(cards, card)
	}
	sortCards(cards)
	return cards
}

// sortCards orders cards by name then uuid, matching ORDER BY c.name, c.uuid.
// A card without a name maps to "" and sorts last, as Cypher orders nulls.
func sortCards(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Name != cards[j].Name {
			if cards[i].Name == "" || cards[j].Name == "" {
				return cards[j].Name == ""
			}
			return cards[i].Name < cards[j].Name
		}
		return cards[i].UUID < cards[j].UUID
	})
}

func mapSet(row map[string]any) *Set {
	set := &Set{
		Name:         stringPtr(row["name"]),
		ReleaseDate:  textPtr(row["releaseDate"]),
		TotalSetSize: int64Ptr(row["totalSetSize"]),
		Type:         stringPtr(row["type"]),
		Cards:        mapCards(row["cards"]),
	}
	if code, ok := row["code"].(string); ok {
		set.Code = code
	}
	return set
}

func mapArtist(row map[string]any) *Artist {
	artist := &Artist{Cards: mapCards(row["cards"])}
	if name, ok := row["name"].(string); ok {
		artist.Name = name
	}
	return artist
}

// bucketRow holds the columns shared by every bucket query.
type bucketRow struct {
	total int64
	cards []Card
}

func mapBucketRow(row map[string]any) bucketRow {
	total, _ := toInt64(row["total"])
	return bucketRow{total: total, cards: mapCards(row["cards"])}
}
