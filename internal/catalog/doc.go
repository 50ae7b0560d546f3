// Package catalog answers read-only questions about the card graph: sets,
// cards, artists, the color, rarity and mana-value buckets, filtered card
// lists and name search.
//
// Each operation compiles its arguments into one parameterized Cypher
// statement. Optional list filters become a conjunction of Predicates;
// related nodes are flattened through declarative Folds rendered by a single
// Projection routine; rows are converted by the mapper, which drops absent
// cards and duplicate names. What an absent subject means differs per
// operation and is looked up with PolicyFor.
//
// Dispatcher adapts the typed Catalog to the name-plus-arguments calls made
// by the GraphQL gateway and the CLI. TracedCatalog adds spans and metrics.
package catalog
