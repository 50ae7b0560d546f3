// Package config loads cardlore's configuration.
//
// Values come from DefaultConfig, then an optional YAML file, then the
// environment. The deployment variables NEO4J_URI, NEO4J_USER,
// NEO4J_PASSWORD, NEO4J_DATABASE, CORS_ORIGIN and PORT are honoured as-is;
// any other key can be overridden as CARDLORE_<SECTION>_<KEY>. String values
// may reference environment variables as ${NAME}.
//
// Example config.yaml:
//
//	server:
//	  address: ":5000"
//	  cors_origins: ["https://cards.example.com"]
//	  rate_limit: 50
//	neo4j:
//	  uri: "neo4j+s://graph.example.com"
//	  username: "${GRAPH_USER}"
//	  password: "${GRAPH_PASSWORD}"
//	catalog:
//	  default_limit: 30
//	  max_limit: 500
package config
