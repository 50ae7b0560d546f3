package catalog

// Card is one printing of a card within a set. Optional attributes are
// pointers so an absent store value stays null in the output instead of
// becoming a zero value. The four list fields are never nil.
//
// Cards nested under a Set, an Artist or a bucket carry the summary subset
// (uuid, name, manaValue, rarity, type, colors, artist, keywords, subtypes,
// supertypes); the remaining fields are null there.
type Card struct {
	UUID              string   `json:"uuid"`
	Name              string   `json:"name"`
	ManaValue         *float64 `json:"manaValue"`
	ConvertedManaCost *float64 `json:"convertedManaCost"`
	Rarity            *string  `json:"rarity"`
	Type              *string  `json:"type"`
	Power             *string  `json:"power"`
	Toughness         *string  `json:"toughness"`
	FlavorText        *string  `json:"flavorText"`
	HasFoil           *bool    `json:"hasFoil"`
	HasNonFoil        *bool    `json:"hasNonFoil"`
	BorderColor       *string  `json:"borderColor"`
	FrameVersion      *string  `json:"frameVersion"`
	OriginalText      *string  `json:"originalText"`
	ScryfallID        *string  `json:"scryfallId"`
	Artist            *string  `json:"artist"`
	SetCode           *string  `json:"setCode"`
	SetName           *string  `json:"setName"`
	Colors            []string `json:"colors"`
	Keywords          []string `json:"keywords"`
	Subtypes          []string `json:"subtypes"`
	Supertypes        []string `json:"supertypes"`
}

// Set is a card set with every printing that belongs to it.
type Set struct {
	Code         string  `json:"code"`
	Name         *string `json:"name"`
	ReleaseDate  *string `json:"releaseDate"`
	TotalSetSize *int64  `json:"totalSetSize"`
	Type         *string `json:"type"`
	Cards        []Card  `json:"cards"`
}

// Artist is an illustrator with every printing credited to them.
type Artist struct {
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// ColorBucket is one page of the cards that have a color.
type ColorBucket struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	Cards []Card `json:"cards"`
}

// RarityBucket is one page of the cards of a rarity.
type RarityBucket struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	Cards []Card `json:"cards"`
}

// ManaValueBucket is one page of the cards with an exact mana value.
type ManaValueBucket struct {
	ManaValue float64 `json:"manaValue"`
	Total     int64   `json:"total"`
	Cards     []Card  `json:"cards"`
}

// Search categories, in the order their results are returned.
const (
	CategorySet    = "Set"
	CategoryCard   = "Card"
	CategoryArtist = "Artist"
)

// SearchResult is one name match. Code is set only for sets and UUID only for
// cards and artists; for an artist it is one of the artist's card uuids.
type SearchResult struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Code     *string `json:"code"`
	UUID     *string `json:"uuid"`
}

// Page selects a window of an ordered result.
type Page struct {
	Skip  int64
	Limit int64
}

// CardFilter is the optional filter set of ListCards. Nil fields impose no
// constraint.
type CardFilter struct {
	ManaValue *float64
	Rarity    *string
	Type      *string
	ColorName *string
	Page      Page
}
