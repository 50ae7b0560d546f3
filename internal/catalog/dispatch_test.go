package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardlore/cardlore/internal/types"
)

// MockCatalog is a mock implementation of Catalog for testing
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetSet(ctx context.Context, code string) (*Set, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Set), args.Error(1)
}

func (m *MockCatalog) GetCard(ctx context.Context, uuid string) (*Card, error) {
	args := m.Called(ctx, uuid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Card), args.Error(1)
}

func (m *MockCatalog) GetArtist(ctx context.Context, name string) (*Artist, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Artist), args.Error(1)
}

func (m *MockCatalog) GetColor(ctx context.Context, name string, page Page) (*ColorBucket, error) {
	args := m.Called(ctx, name, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ColorBucket), args.Error(1)
}

func (m *MockCatalog) GetRarity(ctx context.Context, name string, page Page) (*RarityBucket, error) {
	args := m.Called(ctx, name, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RarityBucket), args.Error(1)
}

func (m *MockCatalog) GetManaValue(ctx context.Context, value float64, page Page) (*ManaValueBucket, error) {
	args := m.Called(ctx, value, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ManaValueBucket), args.Error(1)
}

func (m *MockCatalog) ListCards(ctx context.Context, filter CardFilter) ([]Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Card), args.Error(1)
}

func (m *MockCatalog) Search(ctx context.Context, term string) ([]SearchResult, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SearchResult), args.Error(1)
}

func TestDispatcher_UnknownOperation(t *testing.T) {
	d := NewDispatcher(new(MockCatalog), DefaultLimits())

	_, err := d.Dispatch(context.Background(), "delete-set", nil)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assertErrorCode(t, err, types.OPERATION_UNKNOWN)
}

func TestDispatcher_MissingRequiredArguments(t *testing.T) {
	tests := []struct {
		op   Operation
		args map[string]any
	}{
		{OpGetSet, nil},
		{OpGetSet, map[string]any{"code": ""}},
		{OpGetCard, map[string]any{"uuid": nil}},
		{OpGetArtist, map[string]any{}},
		{OpGetColor, map[string]any{"skip": 0}},
		{OpGetRarity, map[string]any{"name": "  "}},
		{OpGetManaValue, map[string]any{"limit": 5}},
		{OpSearch, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			c := new(MockCatalog)
			d := NewDispatcher(c, DefaultLimits())

			_, err := d.Dispatch(context.Background(), string(tt.op), tt.args)
			require.Error(t, err)
			assertErrorCode(t, err, types.ARGUMENT_MISSING)
			c.AssertNotCalled(t, mockMethod(tt.op))
		})
	}
}

func mockMethod(op Operation) string {
	return map[Operation]string{
		OpGetSet:       "GetSet",
		OpGetCard:      "GetCard",
		OpGetArtist:    "GetArtist",
		OpGetColor:     "GetColor",
		OpGetRarity:    "GetRarity",
		OpGetManaValue: "GetManaValue",
		OpListCards:    "ListCards",
		OpSearch:       "Search",
	}[op]
}

func TestDispatcher_PaginationDefaults(t *testing.T) {
	ctx := context.Background()
	c := new(MockCatalog)
	bucket := &ColorBucket{Name: "G", Cards: []Card{}}
	c.On("GetColor", ctx, "G", Page{Skip: 0, Limit: 30}).Return(bucket, nil)

	d := NewDispatcher(c, DefaultLimits())
	result, err := d.Dispatch(ctx, "get-color", map[string]any{"name": "G"})

	require.NoError(t, err)
	assert.Equal(t, bucket, result)
	c.AssertExpectations(t)
}

func TestDispatcher_LooseNumbers(t *testing.T) {
	ctx := context.Background()
	c := new(MockCatalog)
	c.On("GetManaValue", ctx, 3.0, Page{Skip: 20, Limit: 10}).
		Return(&ManaValueBucket{ManaValue: 3, Cards: []Card{}}, nil)
	c.On("GetRarity", ctx, "rare", Page{Skip: 5, Limit: 0}).
		Return(&RarityBucket{Name: "rare", Cards: []Card{}}, nil)

	d := NewDispatcher(c, DefaultLimits())

	_, err := d.Dispatch(ctx, "get-mana-value", map[string]any{
		"value": json.Number("3"),
		"skip":  float64(20),
		"limit": "10",
	})
	require.NoError(t, err)

	_, err = d.Dispatch(ctx, "get-rarity", map[string]any{
		"name":  "rare",
		"skip":  int64(5),
		"limit": 0,
	})
	require.NoError(t, err)

	c.AssertExpectations(t)
}

func TestDispatcher_InvalidPagination(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"negative limit", map[string]any{"limit": -1}},
		{"negative skip", map[string]any{"skip": -5}},
		{"fractional limit", map[string]any{"limit": 2.5}},
		{"limit above max", map[string]any{"limit": 501}},
		{"non-numeric skip", map[string]any{"skip": "ten"}},
		{"wrong type", map[string]any{"limit": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(MockCatalog)
			d := NewDispatcher(c, DefaultLimits())

			_, err := d.Dispatch(context.Background(), "list-cards", tt.args)
			require.Error(t, err)
			assertErrorCode(t, err, types.ARGUMENT_INVALID)
			c.AssertNotCalled(t, "ListCards")
		})
	}
}

func TestDispatcher_ListCardsFilter(t *testing.T) {
	ctx := context.Background()
	c := new(MockCatalog)

	var got CardFilter
	c.On("ListCards", ctx, mock.AnythingOfType("catalog.CardFilter")).
		Run(func(args mock.Arguments) { got = args.Get(1).(CardFilter) }).
		Return([]Card{}, nil)

	d := NewDispatcher(c, Limits{Default: 12, Max: 100})
	result, err := d.Dispatch(ctx, "list-cards", map[string]any{
		"manaValue": 2,
		"rarity":    "",
		"type":      "Creature",
		"colorName": "W,U",
		"skip":      24,
	})

	require.NoError(t, err)
	assert.Equal(t, []Card{}, result)
	require.NotNil(t, got.ManaValue)
	assert.Equal(t, 2.0, *got.ManaValue)
	assert.Nil(t, got.Rarity)
	assert.Equal(t, "Creature", *got.Type)
	assert.Equal(t, "W,U", *got.ColorName)
	assert.Equal(t, Page{Skip: 24, Limit: 12}, got.Page)
}

func TestDispatcher_GetCardAbsentIsNil(t *testing.T) {
	ctx := context.Background()
	c := new(MockCatalog)
	c.On("GetCard", ctx, "missing").Return(nil, nil)

	d := NewDispatcher(c, DefaultLimits())
	result, err := d.Dispatch(ctx, "get-card", map[string]any{"uuid": "missing"})

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDispatcher_SearchEmptyTermIsPassedThrough(t *testing.T) {
	ctx := context.Background()
	c := new(MockCatalog)
	c.On("Search", ctx, "").Return([]SearchResult{}, nil)

	d := NewDispatcher(c, DefaultLimits())
	result, err := d.Dispatch(ctx, "search", map[string]any{"searchTerm": ""})

	require.NoError(t, err)
	assert.Equal(t, []SearchResult{}, result)
	c.AssertExpectations(t)
}

func TestDispatcher_PropagatesNotFound(t *testing.T) {
	ctx := context.Background()
	c := new(MockCatalog)
	c.On("GetSet", ctx, "XXX").Return(nil, types.NewNotFoundError(ErrCodeSetNotFound, "Set with code XXX not found"))

	d := NewDispatcher(c, DefaultLimits())
	_, err := d.Dispatch(ctx, "get-set", map[string]any{"code": "XXX"})

	assert.True(t, types.IsNotFound(err))
}
