package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/cardlore/cardlore/internal/catalog"
	"github.com/cardlore/cardlore/internal/types"
)

// MockDispatcher is a testify mock of Dispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, op string, args map[string]any) (any, error) {
	called := m.Called(ctx, op, args)
	return called.Get(0), called.Error(1)
}

func strp(s string) *string { return &s }

func f64p(f float64) *float64 { return &f }

func alphaSet() *catalog.Set {
	return &catalog.Set{
		Code: "LEA",
		Name: strp("Limited Edition Alpha"),
		Cards: []catalog.Card{
			{
				UUID:       "u-bolt",
				Name:       "Lightning Bolt",
				ManaValue:  f64p(1),
				Rarity:     strp("common"),
				Colors:     []string{"R"},
				Keywords:   []string{},
				Subtypes:   []string{},
				Supertypes: []string{},
			},
		},
	}
}

func newTestExecutor(t *testing.T) (*Executor, *MockDispatcher) {
	t.Helper()
	schema, err := LoadSchema()
	require.NoError(t, err)
	dispatcher := &MockDispatcher{}
	return NewExecutor(schema, dispatcher, nil), dispatcher
}

func TestLoadSchema(t *testing.T) {
	schema, err := LoadSchema()
	require.NoError(t, err)

	for field := range rootFields {
		assert.NotNil(t, schema.Query.Fields.ForName(field), field)
	}
	assert.NotEmpty(t, SchemaSource())
}

func TestExecute_ShapesResultToSelection(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "get-set", map[string]any{"code": "LEA"}).
		Return(alphaSet(), nil)

	resp := executor.Execute(context.Background(), Request{
		Query: `{ alpha: set(code: "LEA") { __typename code name cards { name colors } } }`,
	})

	require.Empty(t, resp.Errors)
	assert.Equal(t,
		`{"alpha":{"__typename":"Set","code":"LEA","name":"Limited Edition Alpha","cards":[{"name":"Lightning Bolt","colors":["R"]}]}}`,
		string(resp.Data))
	dispatcher.AssertExpectations(t)
}

func TestExecute_VariablesFragmentsAndDirectives(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "get-set", map[string]any{"code": "LEA"}).
		Return(alphaSet(), nil)

	query := `
query Set($code: String!, $withCards: Boolean!) {
  set(code: $code) {
    ...SetFields
    cards @include(if: $withCards) { name }
    releaseDate @skip(if: true)
    ... on Set { totalSetSize }
  }
}
fragment SetFields on Set { code name }`

	resp := executor.Execute(context.Background(), Request{
		Query:     query,
		Variables: map[string]any{"code": "LEA", "withCards": false},
	})

	require.Empty(t, resp.Errors)
	assert.JSONEq(t,
		`{"set":{"code":"LEA","name":"Limited Edition Alpha","totalSetSize":null}}`,
		string(resp.Data))
}

func TestExecute_ArgumentDefaults(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "get-color", map[string]any{"name": "R", "skip": int64(0)}).
		Return(&catalog.ColorBucket{Name: "R", Total: 12, Cards: []catalog.Card{}}, nil)

	resp := executor.Execute(context.Background(), Request{
		Query: `{ color(name: "R") { name total cards { uuid } } }`,
	})

	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"color":{"name":"R","total":12,"cards":[]}}`, string(resp.Data))
	dispatcher.AssertExpectations(t)
}

func TestExecute_NullCard(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "get-card", map[string]any{"uuid": "missing"}).
		Return(nil, nil)

	resp := executor.Execute(context.Background(), Request{
		Query: `{ cardSet(uuid: "missing") { name } }`,
	})

	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"cardSet":null}`, string(resp.Data))
}

func TestExecute_FieldErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         types.NewNotFoundError(catalog.ErrCodeSetNotFound, "Set with code XXX not found"),
			wantCode:    CodeNotFound,
			wantMessage: "Set with code XXX not found",
		},
		{
			name:        "validation",
			err:         types.NewValidationError(types.ARGUMENT_MISSING, "code is required"),
			wantCode:    CodeBadUserInput,
			wantMessage: "code is required",
		},
		{
			name:        "infrastructure hides the cause",
			err:         types.WrapError(catalog.ErrCodeCatalogQueryFailed, "query failed", errors.New("bolt://secret-host refused")),
			wantCode:    CodeInternal,
			wantMessage: "Internal server error",
		},
		{
			name:        "timeout",
			err:         types.WrapError(catalog.ErrCodeCatalogQueryFailed, "query failed", context.DeadlineExceeded),
			wantCode:    CodeTimeout,
			wantMessage: "Query timeout exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, dispatcher := newTestExecutor(t)
			dispatcher.On("Dispatch", mock.Anything, "get-set", mock.Anything).Return(nil, tt.err)

			resp := executor.Execute(context.Background(), Request{
				Query: `{ set(code: "XXX") { name } }`,
			})

			require.True(t, resp.Executed())
			assert.JSONEq(t, `{"set":null}`, string(resp.Data))
			require.Len(t, resp.Errors, 1)
			gqlErr := resp.Errors[0]
			assert.Equal(t, tt.wantMessage, gqlErr.Message)
			assert.Equal(t, tt.wantCode, gqlErr.Extensions["code"])
			assert.Equal(t, "get-set", gqlErr.Extensions["operation"])
			assert.Equal(t, ast.Path{ast.PathName("set")}, gqlErr.Path)
		})
	}
}

func TestExecute_PartialResults(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "get-set", mock.Anything).Return(alphaSet(), nil)
	dispatcher.On("Dispatch", mock.Anything, "get-artist", mock.Anything).
		Return(nil, types.NewNotFoundError(catalog.ErrCodeArtistNotFound, `No artist found with name "Nobody"`))

	resp := executor.Execute(context.Background(), Request{
		Query: `{ set(code: "LEA") { code } artist(name: "Nobody") { name } }`,
	})

	assert.Equal(t, `{"set":{"code":"LEA"},"artist":null}`, string(resp.Data))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeNotFound, resp.Errors[0].Extensions["code"])
}

func TestExecute_NonNullFieldErrorNullsData(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "search", map[string]any{"searchTerm": "bolt"}).
		Return(nil, errors.New("connection reset"))

	resp := executor.Execute(context.Background(), Request{
		Query: `{ search(searchTerm: "bolt") { name category } }`,
	})

	assert.Equal(t, "null", string(resp.Data))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeInternal, resp.Errors[0].Extensions["code"])
}

func TestExecute_SearchResults(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "search", map[string]any{"searchTerm": "alpha"}).
		Return([]catalog.SearchResult{
			{Name: "Limited Edition Alpha", Category: catalog.CategorySet, Code: strp("LEA")},
			{Name: "Alpha Myr", Category: catalog.CategoryCard, UUID: strp("u-myr")},
		}, nil)

	resp := executor.Execute(context.Background(), Request{
		Query: `{ search(searchTerm: "alpha") { category name code uuid } }`,
	})

	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"search":[
		{"category":"Set","name":"Limited Edition Alpha","code":"LEA","uuid":null},
		{"category":"Card","name":"Alpha Myr","code":null,"uuid":"u-myr"}
	]}`, string(resp.Data))
}

func TestExecute_RequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantCode string
	}{
		{name: "empty query", req: Request{Query: "  "}, wantCode: CodeBadUserInput},
		{name: "syntax error", req: Request{Query: `{ set(code: "LEA" { name } }`}, wantCode: CodeParseFailed},
		{name: "unknown field", req: Request{Query: `{ set(code: "LEA") { bogus } }`}, wantCode: CodeValidationFailed},
		{name: "missing required argument", req: Request{Query: `{ set { name } }`}, wantCode: CodeValidationFailed},
		{
			name:     "missing variable",
			req:      Request{Query: `query($code: String!) { set(code: $code) { name } }`},
			wantCode: CodeBadUserInput,
		},
		{
			name:     "ambiguous operation",
			req:      Request{Query: `query A { set(code: "A") { name } } query B { set(code: "B") { name } }`},
			wantCode: CodeBadUserInput,
		},
		{
			name: "unknown operation name",
			req: Request{
				Query:         `query A { set(code: "A") { name } }`,
				OperationName: "B",
			},
			wantCode: CodeBadUserInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, dispatcher := newTestExecutor(t)

			resp := executor.Execute(context.Background(), tt.req)

			assert.False(t, resp.Executed())
			require.NotEmpty(t, resp.Errors)
			assert.Equal(t, tt.wantCode, resp.Errors[0].Extensions["code"])
			dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_NamedOperation(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)
	dispatcher.On("Dispatch", mock.Anything, "get-set", map[string]any{"code": "B"}).Return(alphaSet(), nil)

	resp := executor.Execute(context.Background(), Request{
		Query:         `query A { set(code: "A") { code } } query B { set(code: "B") { code } }`,
		OperationName: "B",
	})

	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"set":{"code":"LEA"}}`, string(resp.Data))
	dispatcher.AssertExpectations(t)
}

func TestResponseEncoding(t *testing.T) {
	failed := &Response{Errors: requestErrors(nil, CodeParseFailed)}
	raw, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	nulled := &Response{Data: json.RawMessage("null")}
	raw, err = json.Marshal(nulled)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":null}`, string(raw))
}

func TestObject_KeepsInsertionOrder(t *testing.T) {
	o := newObject(3)
	o.set("b", 1)
	o.set("a", []any{"x"})
	o.set("b", 2)

	v, ok := o.get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	raw, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":["x"]}`, string(raw))
}
