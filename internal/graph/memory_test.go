package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwigSlot/twig-server/internal/types"
)

func TestMemoryClientLifecycle(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()

	assert.False(t, client.Health(ctx).IsHealthy())
	require.NoError(t, client.Connect(ctx))
	assert.True(t, client.Health(ctx).IsHealthy())
	require.NoError(t, client.Close(ctx))
	assert.False(t, client.Health(ctx).IsHealthy())
}

func TestMemorySessionCreateAndMatchNode(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	res, err := sess.Run(ctx, "CREATE (n:User) RETURN n", map[string]any{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Summary.NodesCreated)

	created, ok := res.Records[0].Node("n")
	require.True(t, ok)
	assert.Equal(t, VertexKey(0), created.ID)
	assert.Equal(t, []string{"User"}, created.Labels)

	// labelled match finds it
	res, err = sess.Run(ctx, "MATCH (n:User) WHERE id(n) = $uid RETURN n",
		map[string]any{"uid": int64(created.ID)})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	// wrong label filters it out
	res, err = sess.Run(ctx, "MATCH (n:Project) WHERE id(n) = $uid RETURN n",
		map[string]any{"uid": int64(created.ID)})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestMemorySessionSetProperty(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	res, err := sess.Run(ctx, "CREATE (n:User) RETURN n", map[string]any{})
	require.NoError(t, err)
	node, _ := res.Records[0].Node("n")

	res, err = sess.Run(ctx, "MATCH (n) WHERE id(n) = $uid SET n.`username` = $value RETURN n",
		map[string]any{"uid": int64(node.ID), "value": "ada"})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Summary.PropertiesSet)

	updated, _ := res.Records[0].Node("n")
	assert.Equal(t, "ada", updated.Props["username"])

	// setting on a missing vertex is a routine empty result
	res, err = sess.Run(ctx, "MATCH (n) WHERE id(n) = $uid SET n.`username` = $value RETURN n",
		map[string]any{"uid": int64(999), "value": "ghost"})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestMemorySessionDetachDelete(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	a, _ := mustCreateNode(t, sess, "User")
	b, _ := mustCreateNode(t, sess, "Project")

	res, err := sess.Run(ctx,
		"MATCH (a), (b) WHERE id(a) = $src AND id(b) = $dst CREATE (a)-[r:owns]->(b) RETURN r",
		map[string]any{"src": int64(a), "dst": int64(b)})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Equal(t, 1, client.RelationshipCount())

	// deleting the endpoint removes the incident edge too
	res, err = sess.Run(ctx, "MATCH (n) WHERE id(n) = $uid DETACH DELETE n",
		map[string]any{"uid": int64(b)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.NodesDeleted)
	assert.Equal(t, 1, res.Summary.RelationshipsDeleted)
	assert.Equal(t, 1, client.NodeCount())
	assert.Equal(t, 0, client.RelationshipCount())
}

func TestMemorySessionCreateRelMissingEndpoint(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	a, _ := mustCreateNode(t, sess, "User")

	res, err := sess.Run(ctx,
		"MATCH (a), (b) WHERE id(a) = $src AND id(b) = $dst CREATE (a)-[r:owns]->(b) RETURN r",
		map[string]any{"src": int64(a), "dst": int64(404)})
	require.NoError(t, err)
	assert.Empty(t, res.Records, "missing endpoint yields no record, not an error")
	assert.Equal(t, 0, client.RelationshipCount(), "no dangling edge may be left behind")
}

func TestMemorySessionDuplicateEdgesPermitted(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	a, _ := mustCreateNode(t, sess, "Resource")
	b, _ := mustCreateNode(t, sess, "Tag")

	create := "MATCH (a), (b) WHERE id(a) = $src AND id(b) = $dst CREATE (a)-[r:has_tag]->(b) RETURN r"
	params := map[string]any{"src": int64(a), "dst": int64(b)}
	for i := 0; i < 2; i++ {
		res, err := sess.Run(ctx, create, params)
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
	}

	assert.Len(t, client.RelationshipsBetween(a, b, "has_tag"), 2)
}

func TestMemorySessionUnknownShape(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	_, err := sess.Run(ctx, "MATCH (n) RETURN count(n)", map[string]any{})
	require.Error(t, err)
	assert.True(t, types.HasCode(err, ErrCodeGraphInvalidQuery))
}

func TestMemoryClientFailNthRun(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	boom := errors.New("boom")
	client.FailNthRun(2, boom)

	_, err := sess.Run(ctx, "CREATE (n:User) RETURN n", map[string]any{})
	require.NoError(t, err)

	_, err = sess.Run(ctx, "CREATE (n:User) RETURN n", map[string]any{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, client.NodeCount(), "failed run must not mutate the graph")

	// subsequent runs succeed again
	_, err = sess.Run(ctx, "CREATE (n:User) RETURN n", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 3, client.RunCount(), "failed call is still recorded")
}

func TestMemoryClientRecordsCalls(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	sess := client.Session(ctx)

	_, err := sess.Run(ctx, "CREATE (n:Tag) RETURN n", map[string]any{})
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "CREATE (n:Tag) RETURN n", calls[0].Cypher)
	assert.False(t, calls[0].Timestamp.IsZero())
}

func mustCreateNode(t *testing.T, sess Session, label string) (VertexKey, *NodeRecord) {
	t.Helper()
	res, err := sess.Run(context.Background(), "CREATE (n:"+label+") RETURN n", map[string]any{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	node, ok := res.Records[0].Node("n")
	require.True(t, ok)
	return node.ID, node
}
