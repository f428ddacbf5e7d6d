package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/orm"
	"github.com/TwigSlot/twig-server/internal/types"
)

func newVertex(t *testing.T, sess graph.Session, label string) *Node {
	t.Helper()
	n := NewNode(label)
	_, err := n.Create(context.Background(), sess)
	require.NoError(t, err)
	return n
}

func TestRelationshipCreate(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	a := newVertex(t, sess, LabelUser)
	b := newVertex(t, sess, LabelProject)
	aKey, _ := a.Key()
	bKey, _ := b.Key()

	r := NewRelationship(RelOwns, aKey, bKey)
	rec, found, err := r.Create(ctx, sess)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, aKey, rec.StartID)
	assert.Equal(t, bKey, rec.EndID)

	key, ok := r.Key()
	require.True(t, ok)
	assert.Equal(t, rec.ID, key)
	assert.Len(t, client.RelationshipsBetween(aKey, bKey, RelOwns), 1)
}

func TestRelationshipCreateWithoutEndpointKeys(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	r := &Relationship{relType: RelOwns, props: map[string]any{}}
	rec, found, err := r.Create(ctx, sess)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
	assert.Equal(t, 0, client.RunCount(), "keyless endpoints never reach the store")
}

func TestRelationshipCreateMissingTarget(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	a := newVertex(t, sess, LabelUser)
	aKey, _ := a.Key()

	r := NewRelationship(RelOwns, aKey, 404)
	_, _, err := r.Create(ctx, sess)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, orm.ErrCodeCreationFailed))
	assert.Equal(t, 0, client.RelationshipCount(), "no dangling edge is left behind")
}

func TestRelationshipCreateIdempotentOnceKeyed(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	a := newVertex(t, sess, LabelUser)
	b := newVertex(t, sess, LabelProject)
	aKey, _ := a.Key()
	bKey, _ := b.Key()

	r := NewRelationship(RelOwns, aKey, bKey)
	_, _, err := r.Create(ctx, sess)
	require.NoError(t, err)
	runs := client.RunCount()

	_, found, err := r.Create(ctx, sess)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, runs, client.RunCount())
	assert.Equal(t, 1, client.RelationshipCount())
}

func TestRelationshipDuplicatesPermitted(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	a := newVertex(t, sess, LabelResource)
	b := newVertex(t, sess, LabelTag)
	aKey, _ := a.Key()
	bKey, _ := b.Key()

	for i := 0; i < 2; i++ {
		r := NewRelationship(RelHasTag, aKey, bKey)
		_, found, err := r.Create(ctx, sess)
		require.NoError(t, err)
		require.True(t, found)
	}
	assert.Len(t, client.RelationshipsBetween(aKey, bKey, RelHasTag), 2,
		"the relationship layer does not enforce edge uniqueness")
}

func TestRelationshipFetch(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	a := newVertex(t, sess, LabelUser)
	b := newVertex(t, sess, LabelProject)
	aKey, _ := a.Key()
	bKey, _ := b.Key()

	created := NewRelationship(RelOwns, aKey, bKey)
	_, _, err := created.Create(ctx, sess)
	require.NoError(t, err)
	key, _ := created.Key()

	// a fresh handle resolves endpoints through Fetch
	r := NewRelationshipWithKey(RelOwns, key)
	rec, found, err := r.Fetch(ctx, sess)
	require.NoError(t, err)
	require.True(t, found)
	src, dst, ok := r.Endpoints()
	require.True(t, ok)
	assert.Equal(t, aKey, src)
	assert.Equal(t, bKey, dst)
	assert.Equal(t, key, rec.ID)

	// type mismatch is a routine not-found
	wrong := NewRelationshipWithKey(RelHasTag, key)
	_, found, err = wrong.Fetch(ctx, sess)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRelationshipFetchEndpoints(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	a := newVertex(t, sess, LabelResource)
	b := newVertex(t, sess, LabelTag)
	aKey, _ := a.Key()
	bKey, _ := b.Key()

	probe := NewRelationship(RelHasTag, aKey, bKey)
	_, found, err := probe.FetchEndpoints(ctx, sess)
	require.NoError(t, err)
	assert.False(t, found, "absence is typed, not an error")

	created := NewRelationship(RelHasTag, aKey, bKey)
	_, _, err = created.Create(ctx, sess)
	require.NoError(t, err)

	rec, found, err := probe.FetchEndpoints(ctx, sess)
	require.NoError(t, err)
	require.True(t, found)
	createdKey, _ := created.Key()
	assert.Equal(t, createdKey, rec.ID)

	// the probe picked up the edge key from the store
	probeKey, ok := probe.Key()
	require.True(t, ok)
	assert.Equal(t, createdKey, probeKey)
}

func TestRelationshipDelete(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	a := newVertex(t, sess, LabelUser)
	b := newVertex(t, sess, LabelProject)
	aKey, _ := a.Key()
	bKey, _ := b.Key()

	r := NewRelationship(RelOwns, aKey, bKey)
	_, _, err := r.Create(ctx, sess)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, sess))
	assert.Equal(t, 0, client.RelationshipCount())
	assert.Equal(t, 2, client.NodeCount(), "endpoint vertices are untouched")

	_, ok := r.Key()
	assert.False(t, ok)

	// endpoints stay known, so the edge can be re-created
	_, found, err := r.Create(ctx, sess)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, client.RelationshipCount())
}

func TestRelationshipDeleteWithoutKey(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	r := NewRelationship(RelOwns, 1, 2)
	err := r.Delete(ctx, sess)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, orm.ErrCodeNoKey))
}
