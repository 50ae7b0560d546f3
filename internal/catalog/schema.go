package catalog

import (
	"fmt"
	"regexp"
)

// Relationship types written by the seeding process.
const (
	RelBelongsTo    = "BELONGS_TO"
	RelHasColor     = "HAS_COLOR"
	RelHasArtist    = "HAS_ARTIST"
	RelHasKeyword   = "HAS_KEYWORD"
	RelHasSubtype   = "HAS_SUBTYPE"
	RelHasSupertype = "HAS_SUPERTYPE"
)

// DefaultCardLabel is the label the seeding process gives card printings.
const DefaultCardLabel = "CardSet"

var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Labels names the node labels queries match on. Labels cannot be bound as
// Cypher parameters, so they are validated before they reach query text.
type Labels struct {
	Set       string
	Card      string
	Artist    string
	Color     string
	Keyword   string
	Subtype   string
	Supertype string
}

// DefaultLabels returns the labels of the seeded graph.
func DefaultLabels() Labels {
	return Labels{
		Set:       "Set",
		Card:      DefaultCardLabel,
		Artist:    "Artist",
		Color:     "Color",
		Keyword:   "Keyword",
		Subtype:   "Subtype",
		Supertype: "Supertype",
	}
}

// Validate checks that every label is a plain identifier.
func (l Labels) Validate() error {
	for name, label := range map[string]string{
		"set":       l.Set,
		"card":      l.Card,
		"artist":    l.Artist,
		"color":     l.Color,
		"keyword":   l.Keyword,
		"subtype":   l.Subtype,
		"supertype": l.Supertype,
	} {
		if !labelPattern.MatchString(label) {
			return fmt.Errorf("invalid %s label %q", name, label)
		}
	}
	return nil
}
