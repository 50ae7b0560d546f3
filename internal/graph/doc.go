// Package graph owns the process-wide connection to the Neo4j property graph
// that backs the catalog.
//
// A Client is built once at startup from Config, connected with Connect
// (which retries with backoff and fails if the store stays unreachable), and
// closed on shutdown. Every catalog operation borrows exactly one read-mode
// session through WithReadSession; the session is released on success, on
// error and on panic. Queries run as auto-commit statements so nothing is
// retried by this layer.
//
//	client, err := graph.NewNeo4jClient(cfg, graph.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(context.Background())
//
//	err = client.WithReadSession(ctx, func(r graph.Runner) error {
//	    result, err := r.Run(ctx, "MATCH (s:Set {code: $code}) RETURN s.name AS name",
//	        map[string]any{"code": "LEA"})
//	    ...
//	})
//
// MockClient implements Client in memory for unit tests and counts sessions
// so tests can assert none leak.
package graph
