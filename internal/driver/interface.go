package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphDriver runs the statement queries in this package against a
// Bolt-speaking knowledge graph store.
type GraphDriver interface {
	// ExecuteQuery runs one Cypher query in its own transaction.
	ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error)
	// BuildIndices prepares the Resource uri lookups the statement queries rely on.
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}

var _ GraphDriver = (*MemgraphDriver)(nil)
