package gateway

import (
	_ "embed"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/cardlore/cardlore/internal/catalog"
	"github.com/cardlore/cardlore/internal/types"
)

//go:embed schema.graphql
var schemaSource string

// rootFields maps each Query field to the catalog operation it runs. Field
// argument names are the operation's argument names.
var rootFields = map[string]catalog.Operation{
	"set":       catalog.OpGetSet,
	"cardSet":   catalog.OpGetCard,
	"artist":    catalog.OpGetArtist,
	"color":     catalog.OpGetColor,
	"rarity":    catalog.OpGetRarity,
	"manaValue": catalog.OpGetManaValue,
	"cardSets":  catalog.OpListCards,
	"search":    catalog.OpSearch,
}

// LoadSchema parses the embedded schema and checks that every Query field is
// bound to an operation.
func LoadSchema() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSource})
	if err != nil {
		return nil, types.WrapError(ErrCodeSchemaInvalid, "parse GraphQL schema", err)
	}

	for _, field := range schema.Query.Fields {
		if isIntrospection(field.Name) {
			continue
		}
		if _, ok := rootFields[field.Name]; !ok {
			return nil, types.NewError(ErrCodeSchemaInvalid, "query field "+field.Name+" has no operation")
		}
	}
	return schema, nil
}

// SchemaSource returns the SDL served by the gateway.
func SchemaSource() string {
	return schemaSource
}

func isIntrospection(name string) bool {
	return strings.HasPrefix(name, "__")
}
