//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertus-andito/fake-news-detection/internal/config"
	"github.com/albertus-andito/fake-news-detection/internal/core/model"
	"github.com/albertus-andito/fake-news-detection/internal/driver"
	"github.com/albertus-andito/fake-news-detection/internal/logging"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

func setupGraph(t *testing.T) *service.BoltGraph {
	t.Helper()
	_ = godotenv.Load("../../.env")
	if os.Getenv("MEMGRAPH_URI") == "" {
		t.Skip("MEMGRAPH_URI not set")
	}

	cfg, err := config.Load("")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := logging.New("debug", os.Stderr)
	d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	require.NoError(t, d.BuildIndices(ctx))

	return service.NewBoltGraph(d, logger)
}

// resource returns a URI no other run has used.
func resource(name string) string {
	return "http://example.org/resource/" + name + "_" + uuid.NewString()
}

func TestBoltGraphLifecycle(t *testing.T) {
	g := setupGraph(t)
	ctx := context.Background()

	paris := resource("Paris")
	france := resource("France")
	germany := resource("Germany")
	capitalOf := "http://example.org/ontology/capitalOf"

	stmt := model.Triple{Subject: paris, Relation: capitalOf, Objects: []string{france}}

	// 1. Plain insert of an unknown triple
	report, err := g.Insert(ctx, []model.Triple{stmt})
	require.NoError(t, err)
	assert.False(t, report.HasConflicts())

	triples, err := g.Entity(ctx, paris)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.True(t, triples[0].Equal(stmt))

	// 2. Inserting it again is a no-op
	report, err = g.Insert(ctx, []model.Triple{stmt})
	require.NoError(t, err)
	assert.False(t, report.HasConflicts())

	// 3. A different object for the same relation conflicts
	other := model.Triple{Subject: paris, Relation: capitalOf, Objects: []string{germany}}
	report, err = g.Insert(ctx, []model.Triple{other})
	require.NoError(t, err)
	require.True(t, report.HasConflicts())
	assert.True(t, report.Existing()[0].Equal(stmt))

	// 4. Force insert ignores the conflict
	require.NoError(t, g.ForceInsert(ctx, []model.Triple{other}))
	triples, err = g.Entity(ctx, paris)
	require.NoError(t, err)
	assert.Len(t, triples, 2)

	// 5. Delete both
	require.NoError(t, g.Delete(ctx, stmt))
	require.NoError(t, g.Delete(ctx, other))
	triples, err = g.Entity(ctx, paris)
	require.NoError(t, err)
	assert.Empty(t, triples)
}

func TestBoltGraphEquate(t *testing.T) {
	g := setupGraph(t)
	ctx := context.Background()

	a := resource("NYC")
	b := resource("New_York_City")
	require.NoError(t, g.Equate(ctx, a, b))
}
