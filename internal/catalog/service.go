package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/cardlore/cardlore/internal/graph"
	"github.com/cardlore/cardlore/internal/types"
)

// Catalog is the read-only query surface over the card graph. Every method
// uses one read session for its whole duration.
type Catalog interface {
	// GetSet returns a set and its cards, or a not-found error.
	GetSet(ctx context.Context, code string) (*Set, error)
	// GetCard returns a card, or nil when no card has the uuid.
	GetCard(ctx context.Context, uuid string) (*Card, error)
	// GetArtist returns an artist and their cards, or a not-found error.
	GetArtist(ctx context.Context, name string) (*Artist, error)
	// GetColor returns one page of the cards of a color, or a not-found
	// error when the color does not exist.
	GetColor(ctx context.Context, name string, page Page) (*ColorBucket, error)
	// GetRarity returns one page of the cards of a rarity, or a not-found
	// error when no card has it.
	GetRarity(ctx context.Context, name string, page Page) (*RarityBucket, error)
	// GetManaValue returns one page of the cards with a mana value, or a
	// not-found error when no card has it.
	GetManaValue(ctx context.Context, value float64, page Page) (*ManaValueBucket, error)
	// ListCards returns one page of the cards matching filter.
	ListCards(ctx context.Context, filter CardFilter) ([]Card, error)
	// Search returns every set, card and artist whose name contains term.
	Search(ctx context.Context, term string) ([]SearchResult, error)
}

// Limits bounds pagination.
type Limits struct {
	Default int64
	Max     int64
}

// DefaultLimits returns the page size used when a request names none and the
// largest page a request may ask for.
func DefaultLimits() Limits {
	return Limits{Default: 30, Max: 500}
}

// Service implements Catalog on a graph.Client.
type Service struct {
	client  graph.Client
	queries *queryBuilder
	limits  Limits
	logger  *slog.Logger
}

var _ Catalog = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLimits overrides the pagination bounds.
func WithLimits(limits Limits) ServiceOption {
	return func(s *Service) {
		s.limits = limits
	}
}

// WithLabels overrides the node labels queries match on.
func WithLabels(labels Labels) ServiceOption {
	return func(s *Service) {
		s.queries = newQueryBuilder(labels)
	}
}

// NewService creates a Service reading through client.
func NewService(client graph.Client, opts ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("catalog: graph client is required")
	}
	s := &Service{
		client:  client,
		queries: newQueryBuilder(DefaultLabels()),
		limits:  DefaultLimits(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.queries.labels.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if s.limits.Default < 0 || s.limits.Max < s.limits.Default {
		return nil, fmt.Errorf("catalog: invalid limits default=%d max=%d", s.limits.Default, s.limits.Max)
	}
	return s, nil
}

// GetSet implements Catalog.
func (s *Service) GetSet(ctx context.Context, code string) (*Set, error) {
	if err := requireKey("code", code); err != nil {
		return nil, s.fail(OpGetSet, err)
	}

	var set *Set
	err := s.read(ctx, OpGetSet, s.queries.setQuery(code), func(rows []map[string]any) {
		if len(rows) > 0 {
			set = mapSet(rows[0])
		}
	})
	if err == nil {
		err = checkFound(OpGetSet, set != nil, code)
	}
	if err != nil {
		return nil, s.fail(OpGetSet, err)
	}
	return set, nil
}

// GetCard implements Catalog.
func (s *Service) GetCard(ctx context.Context, uuid string) (*Card, error) {
	if err := requireKey("uuid", uuid); err != nil {
		return nil, s.fail(OpGetCard, err)
	}

	var card *Card
	err := s.read(ctx, OpGetCard, s.queries.cardQuery(uuid), func(rows []map[string]any) {
		if len(rows) == 0 {
			return
		}
		if c, ok := mapCard(rows[0]["card"]); ok {
			card = &c
		}
	})
	if err != nil {
		return nil, s.fail(OpGetCard, err)
	}
	return card, nil
}

// GetArtist implements Catalog.
func (s *Service) GetArtist(ctx context.Context, name string) (*Artist, error) {
	if err := requireKey("name", name); err != nil {
		return nil, s.fail(OpGetArtist, err)
	}

	var artist *Artist
	err := s.read(ctx, OpGetArtist, s.queries.artistQuery(name), func(rows []map[string]any) {
		if len(rows) > 0 {
			artist = mapArtist(rows[0])
		}
	})
	if err == nil {
		err = checkFound(OpGetArtist, artist != nil, name)
	}
	if err != nil {
		return nil, s.fail(OpGetArtist, err)
	}
	return artist, nil
}

// GetColor implements Catalog. The color node is the anchor: an unknown
// color is an error, a known color with no cards in the page is not.
func (s *Service) GetColor(ctx context.Context, name string, page Page) (*ColorBucket, error) {
	if err := requireKey("name", name); err != nil {
		return nil, s.fail(OpGetColor, err)
	}
	if err := s.validatePage(page); err != nil {
		return nil, s.fail(OpGetColor, err)
	}

	var bucket *ColorBucket
	err := s.read(ctx, OpGetColor, s.queries.colorQuery(name, page), func(rows []map[string]any) {
		if len(rows) == 0 {
			return
		}
		b := mapBucketRow(rows[0])
		bucket = &ColorBucket{Name: name, Total: b.total, Cards: b.cards}
		if stored, ok := rows[0]["name"].(string); ok {
			bucket.Name = stored
		}
	})
	if err == nil {
		err = checkFound(OpGetColor, bucket != nil, name)
	}
	if err != nil {
		return nil, s.fail(OpGetColor, err)
	}
	return bucket, nil
}

// GetRarity implements Catalog. Rarity is a card attribute, so the bucket
// exists when at least one card has it.
func (s *Service) GetRarity(ctx context.Context, name string, page Page) (*RarityBucket, error) {
	if err := requireKey("name", name); err != nil {
		return nil, s.fail(OpGetRarity, err)
	}
	if err := s.validatePage(page); err != nil {
		return nil, s.fail(OpGetRarity, err)
	}

	var b bucketRow
	err := s.read(ctx, OpGetRarity, s.queries.rarityQuery(name, page), func(rows []map[string]any) {
		if len(rows) > 0 {
			b = mapBucketRow(rows[0])
		}
	})
	if err == nil {
		err = checkFound(OpGetRarity, b.total > 0, name)
	}
	if err != nil {
		return nil, s.fail(OpGetRarity, err)
	}
	return &RarityBucket{Name: name, Total: b.total, Cards: b.cards}, nil
}

// GetManaValue implements Catalog.
func (s *Service) GetManaValue(ctx context.Context, value float64, page Page) (*ManaValueBucket, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, s.fail(OpGetManaValue,
			types.NewValidationError(types.ARGUMENT_INVALID, "value must be a finite number"))
	}
	if err := s.validatePage(page); err != nil {
		return nil, s.fail(OpGetManaValue, err)
	}

	var b bucketRow
	err := s.read(ctx, OpGetManaValue, s.queries.manaValueQuery(value, page), func(rows []map[string]any) {
		if len(rows) > 0 {
			b = mapBucketRow(rows[0])
		}
	})
	if err == nil {
		err = checkFound(OpGetManaValue, b.total > 0, strconv.FormatFloat(value, 'f', -1, 64))
	}
	if err != nil {
		return nil, s.fail(OpGetManaValue, err)
	}
	return &ManaValueBucket{ManaValue: value, Total: b.total, Cards: b.cards}, nil
}

// ListCards implements Catalog. No match is an empty list.
func (s *Service) ListCards(ctx context.Context, filter CardFilter) ([]Card, error) {
	if err := s.validatePage(filter.Page); err != nil {
		return nil, s.fail(OpListCards, err)
	}
	if filter.ManaValue != nil && (math.IsNaN(*filter.ManaValue) || math.IsInf(*filter.ManaValue, 0)) {
		return nil, s.fail(OpListCards,
			types.NewValidationError(types.ARGUMENT_INVALID, "manaValue must be a finite number"))
	}

	cards := []Card{}
	err := s.read(ctx, OpListCards, s.queries.listCardsQuery(filter), func(rows []map[string]any) {
		seen := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			card, ok := mapCard(row["card"])
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
	})
	if err != nil {
		return nil, s.fail(OpListCards, err)
	}
	return cards, nil
}

// Search implements Catalog. A blank term matches nothing and does not reach
// the store.
func (s *Service) Search(ctx context.Context, term string) ([]SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return []SearchResult{}, nil
	}

	var results []SearchResult
	err := s.read(ctx, OpSearch, s.queries.searchQuery(term), func(rows []map[string]any) {
		results = mergeSearchRows(rows)
	})
	if err != nil {
		return nil, s.fail(OpSearch, err)
	}
	return results, nil
}

// read runs q in one read session and hands the rows to mapRows before the
// session is released.
func (s *Service) read(ctx context.Context, op Operation, q Query, mapRows func([]map[string]any)) error {
	s.logger.DebugContext(ctx, "catalog operation", "operation", string(op), "params", q.Params)

	return s.client.WithReadSession(ctx, func(r graph.Runner) error {
		rows, err := execute(ctx, r, op, q)
		if err != nil {
			return err
		}
		mapRows(rows)
		return nil
	})
}

// fail logs err with its kind and returns it unchanged.
func (s *Service) fail(op Operation, err error) error {
	kind := types.KindOf(err)
	if kind == types.KindInfrastructure {
		s.logger.Error("catalog operation failed", "operation", string(op), "kind", kind.String(), "error", err)
	} else {
		s.logger.Warn("catalog operation rejected", "operation", string(op), "kind", kind.String(), "error", err)
	}
	return err
}

func requireKey(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return types.NewValidationError(types.ARGUMENT_MISSING, fmt.Sprintf("%s is required", name))
	}
	return nil
}

func (s *Service) validatePage(page Page) error {
	if page.Skip < 0 {
		return types.NewValidationError(types.ARGUMENT_INVALID, "skip must not be negative")
	}
	if page.Limit < 0 {
		return types.NewValidationError(types.ARGUMENT_INVALID, "limit must not be negative")
	}
	if page.Limit > s.limits.Max {
		return types.NewValidationError(types.ARGUMENT_INVALID,
			fmt.Sprintf("limit must not exceed %d", s.limits.Max))
	}
	return nil
}
