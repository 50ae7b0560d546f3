package catalog

import (
	"fmt"
	"strconv"

	"github.com/cardlore/cardlore/internal/types"
)

// Operation names a catalog operation.
type Operation string

const (
	OpGetSet       Operation = "get-set"
	OpGetCard      Operation = "get-card"
	OpGetArtist    Operation = "get-artist"
	OpGetColor     Operation = "get-color"
	OpGetRarity    Operation = "get-rarity"
	OpGetManaValue Operation = "get-mana-value"
	OpListCards    Operation = "list-cards"
	OpSearch       Operation = "search"
)

// Operations lists every operation in a stable order.
func Operations() []Operation {
	return []Operation{
		OpGetSet, OpGetCard, OpGetArtist, OpGetColor,
		OpGetRarity, OpGetManaValue, OpListCards, OpSearch,
	}
}

// NotFoundPolicy is what an operation returns when its subject is absent.
type NotFoundPolicy string

const (
	// ErrorOnAbsent fails with a not-found error when the entity is absent.
	ErrorOnAbsent NotFoundPolicy = "error-on-absent"
	// NullOnAbsent returns a nil record.
	NullOnAbsent NotFoundPolicy = "null-on-absent"
	// EmptyListOnAbsent returns an empty list and never fails.
	EmptyListOnAbsent NotFoundPolicy = "empty-list-on-absent"
	// ErrorOnAbsentAnchor fails only when the bucket itself does not exist;
	// an existing bucket with no cards in the page is an empty list.
	ErrorOnAbsentAnchor NotFoundPolicy = "empty-list-on-absent-filtered-but-error-on-absent-anchor"
)

var notFoundPolicies = map[Operation]NotFoundPolicy{
	OpGetSet:       ErrorOnAbsent,
	OpGetCard:      NullOnAbsent,
	OpGetArtist:    ErrorOnAbsent,
	OpGetColor:     ErrorOnAbsentAnchor,
	OpGetRarity:    ErrorOnAbsentAnchor,
	OpGetManaValue: ErrorOnAbsentAnchor,
	OpListCards:    EmptyListOnAbsent,
	OpSearch:       EmptyListOnAbsent,
}

// PolicyFor returns the not-found policy of op.
func PolicyFor(op Operation) NotFoundPolicy {
	if policy, ok := notFoundPolicies[op]; ok {
		return policy
	}
	return EmptyListOnAbsent
}

var notFoundCodes = map[Operation]types.ErrorCode{
	OpGetSet:       ErrCodeSetNotFound,
	OpGetArtist:    ErrCodeArtistNotFound,
	OpGetColor:     ErrCodeColorNotFound,
	OpGetRarity:    ErrCodeRarityNotFound,
	OpGetManaValue: ErrCodeManaValueNotFound,
}

// checkFound applies the policy of op to a lookup whose subject was or was
// not matched. It returns a not-found error only for policies that make
// absence an error.
func checkFound(op Operation, found bool, subject string) error {
	if found {
		return nil
	}
	switch PolicyFor(op) {
	case ErrorOnAbsent, ErrorOnAbsentAnchor:
		return types.NewNotFoundError(notFoundCodes[op], notFoundMessage(op, subject))
	default:
		return nil
	}
}

func notFoundMessage(op Operation, subject string) string {
	switch op {
	case OpGetSet:
		return fmt.Sprintf("Set with code %s not found", subject)
	case OpGetArtist:
		return fmt.Sprintf("No artist found with name %s", strconv.Quote(subject))
	case OpGetColor:
		return fmt.Sprintf("Color %s not found", strconv.Quote(subject))
	case OpGetRarity:
		return fmt.Sprintf("Rarity %s not found", strconv.Quote(subject))
	case OpGetManaValue:
		return fmt.Sprintf("No cards found with mana value %s", subject)
	default:
		return fmt.Sprintf("%s: %s not found", op, subject)
	}
}
