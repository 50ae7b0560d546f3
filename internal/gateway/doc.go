// Package gateway exposes the catalog over GraphQL on HTTP.
//
// The schema is embedded (schema.graphql) and parsed and validated with
// gqlparser. Every Query field is bound to one catalog operation and runs
// through a Dispatcher, so the gateway and the CLI share argument decoding and
// defaults. Results are shaped to the selection set, including aliases,
// fragments, __typename and the @skip/@include directives. __schema and
// __type are answered from the parsed schema through gqlgen's introspection
// types, which is what the optional playground page loads.
//
// Errors carry extensions.code:
//
//	BAD_USER_INPUT            missing or malformed arguments
//	NOT_FOUND                 the requested set, artist or bucket does not exist
//	INTERNAL_SERVER_ERROR     the graph store failed; details are only logged
//	GRAPHQL_PARSE_FAILED      the document is not valid GraphQL
//	GRAPHQL_VALIDATION_FAILED the document does not match the schema
//
// Server routes: the GraphQL path (GET and POST), /health and, when enabled,
// the Prometheus metrics path and the playground page at "/".
package gateway
