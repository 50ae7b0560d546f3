package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func executeData(t *testing.T, executor *Executor, req Request) map[string]any {
	t.Helper()
	resp := executor.Execute(context.Background(), req)
	require.Empty(t, resp.Errors)

	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func namesOf(t *testing.T, list any) []string {
	t.Helper()
	items, ok := list.([]any)
	require.True(t, ok, "expected a list, got %T", list)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.(map[string]any)["name"].(string))
	}
	return names
}

func TestIntrospection_QueryType(t *testing.T) {
	executor, dispatcher := newTestExecutor(t)

	resp := executor.Execute(context.Background(), Request{
		Query: `{ __schema { __typename queryType { name kind } mutationType { name } } }`,
	})

	require.Empty(t, resp.Errors)
	assert.Equal(t,
		`{"__schema":{"__typename":"__Schema","queryType":{"name":"Query","kind":"OBJECT"},"mutationType":null}}`,
		string(resp.Data))
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntrospection_SchemaListsTypesAndDirectives(t *testing.T) {
	executor, _ := newTestExecutor(t)

	data := executeData(t, executor, Request{
		Query: `{ __schema { types { name } directives { name locations args { name } } } }`,
	})

	schema := data["__schema"].(map[string]any)
	typeNames := namesOf(t, schema["types"])
	assert.Contains(t, typeNames, "Query")
	assert.Contains(t, typeNames, "CardSet")
	assert.Contains(t, typeNames, "SearchResult")
	assert.Contains(t, typeNames, "__Type")

	directives := namesOf(t, schema["directives"])
	assert.Contains(t, directives, "skip")
	assert.Contains(t, directives, "include")
}

func TestIntrospection_Type(t *testing.T) {
	executor, _ := newTestExecutor(t)

	data := executeData(t, executor, Request{
		Query: `query Describe($name: String!) {
			__type(name: $name) {
				name
				kind
				fields {
					name
					args { name defaultValue }
					type { kind name ofType { kind name ofType { kind name } } }
				}
			}
		}`,
		Variables: map[string]any{"name": "Set"},
	})

	set := data["__type"].(map[string]any)
	assert.Equal(t, "Set", set["name"])
	assert.Equal(t, "OBJECT", set["kind"])

	fields := set["fields"].([]any)
	assert.Contains(t, namesOf(t, fields), "code")
	assert.Contains(t, namesOf(t, fields), "cards")

	for _, raw := range fields {
		field := raw.(map[string]any)
		switch field["name"] {
		case "code":
			assert.Equal(t, map[string]any{
				"kind": "NON_NULL",
				"name": nil,
				"ofType": map[string]any{"kind": "SCALAR", "name": "String", "ofType": nil},
			}, field["type"])
		case "cards":
			typ := field["type"].(map[string]any)
			assert.Equal(t, "NON_NULL", typ["kind"])
			assert.Equal(t, "LIST", typ["ofType"].(map[string]any)["kind"])
		}
		assert.Equal(t, []any{}, field["args"])
	}
}

func TestIntrospection_QueryArguments(t *testing.T) {
	executor, _ := newTestExecutor(t)

	data := executeData(t, executor, Request{
		Query: `{ __type(name: "Query") { fields { name args { name defaultValue type { name } } } } }`,
	})

	for _, raw := range data["__type"].(map[string]any)["fields"].([]any) {
		field := raw.(map[string]any)
		if field["name"] != "color" {
			continue
		}
		args := field["args"].([]any)
		assert.Equal(t, []string{"name", "skip", "limit"}, namesOf(t, args))
		assert.Equal(t, "0", args[1].(map[string]any)["defaultValue"])
		return
	}
	t.Fatal("color field missing from Query")
}

func TestIntrospection_UnknownType(t *testing.T) {
	executor, _ := newTestExecutor(t)

	resp := executor.Execute(context.Background(), Request{
		Query: `{ __type(name: "Planeswalker") { name } }`,
	})

	require.Empty(t, resp.Errors)
	assert.Equal(t, `{"__type":null}`, string(resp.Data))
}
