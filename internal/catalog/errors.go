package catalog

import "github.com/cardlore/cardlore/internal/types"

// Catalog error codes
const (
	// Not-found errors, one per operation whose anchor absence is an error
	ErrCodeSetNotFound       types.ErrorCode = "SET_NOT_FOUND"
	ErrCodeArtistNotFound    types.ErrorCode = "ARTIST_NOT_FOUND"
	ErrCodeColorNotFound     types.ErrorCode = "COLOR_NOT_FOUND"
	ErrCodeRarityNotFound    types.ErrorCode = "RARITY_NOT_FOUND"
	ErrCodeManaValueNotFound types.ErrorCode = "MANA_VALUE_NOT_FOUND"

	// Infrastructure errors
	ErrCodeCatalogQueryFailed types.ErrorCode = "CATALOG_QUERY_FAILED"
)
