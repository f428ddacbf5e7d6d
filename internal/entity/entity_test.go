package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwigSlot/twig-server/internal/types"
)

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	u, err := EnsureUser(ctx, sess, "kratos-123")
	require.NoError(t, err)
	key, ok := u.Key()
	require.True(t, ok)
	assert.Equal(t, "kratos-123", u.KratosUserID)
	assert.Equal(t, 1, client.NodeCount())

	// second sight finds the existing vertex
	again, err := EnsureUser(ctx, sess, "kratos-123")
	require.NoError(t, err)
	againKey, _ := again.Key()
	assert.Equal(t, key, againKey)
	assert.Equal(t, 1, client.NodeCount())
}

func TestFindUserByNaturalKeys(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	u := NewUser("kratos-123", "ada")
	require.NoError(t, u.Create(ctx, sess))
	key, _ := u.Key()

	byName, found, err := FindUserByUsername(ctx, sess, "ada")
	require.NoError(t, err)
	require.True(t, found)
	byNameKey, _ := byName.Key()
	assert.Equal(t, key, byNameKey)
	assert.Equal(t, "kratos-123", byName.KratosUserID)

	byID, found, err := FindUserByKratosID(ctx, sess, "kratos-123")
	require.NoError(t, err)
	require.True(t, found)
	byIDKey, _ := byID.Key()
	assert.Equal(t, key, byIDKey)

	_, found, err = FindUserByUsername(ctx, sess, "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "ada")
	require.NoError(t, owner.Create(ctx, sess))
	ownerKey, _ := owner.Key()

	p := NewProject("Graphs", "All things graphs")
	require.NoError(t, p.Create(ctx, sess, owner))
	pKey, ok := p.Key()
	require.True(t, ok)
	require.NotNil(t, p.OwnerEdge)
	assert.Len(t, client.RelationshipsBetween(ownerKey, pKey, RelOwns), 1)

	// listing walks the owns edges
	projects, err := owner.Projects(ctx, sess)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Graphs", projects[0].Name)
	assert.Equal(t, "All things graphs", projects[0].Description)
	require.NotNil(t, projects[0].OwnerEdge)

	// and back again
	got, found, err := p.Owner(ctx, sess)
	require.NoError(t, err)
	require.True(t, found)
	gotKey, _ := got.Key()
	assert.Equal(t, ownerKey, gotKey)

	require.NoError(t, p.Rename(ctx, sess, "Graph theory"))
	require.NoError(t, p.SetDescription(ctx, sess, "Vertices and edges"))
	reread, found, err := FindProjectByKey(ctx, sess, pKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Graph theory", reread.Name)
	assert.Equal(t, "Vertices and edges", reread.Description)

	// deleting the project detaches the owning edge
	require.NoError(t, p.Node.Delete(ctx, sess))
	assert.Empty(t, client.RelationshipsBetween(ownerKey, pKey, RelOwns))
	projects, err = owner.Projects(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectCreateRequiresKeyedOwner(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	p := NewProject("Orphan", "")
	err := p.Create(ctx, sess, NewUser("kratos-x", ""))
	require.Error(t, err)
	assert.True(t, types.HasCode(err, ErrCodeMissingParent))
	assert.Equal(t, 0, client.RunCount(), "nothing is written for a keyless owner")
}

func TestProjectCreatePartialFailure(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	ownerKey, _ := owner.Key()

	// fail the fourth statement of the creation sequence: the owns edge
	boom := errors.New("store down")
	client.FailNthRun(4, boom)

	p := NewProject("Half-made", "created but never owned")
	err := p.Create(ctx, sess, owner)
	require.ErrorIs(t, err, boom)

	// the earlier statements stayed applied: the vertex exists with its
	// name and description, but no owning edge points at it
	pKey, ok := p.Key()
	require.True(t, ok)
	orphan, found, err := FindProjectByKey(ctx, sess, pKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Half-made", orphan.Name)
	assert.Empty(t, client.RelationshipsBetween(ownerKey, pKey, RelOwns))

	projects, err := owner.Projects(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, projects, "the orphan is invisible to ownership listing")
}

func TestResourceLifecycle(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	p := NewProject("Reading list", "")
	require.NoError(t, p.Create(ctx, sess, owner))
	pKey, _ := p.Key()

	r := NewResource("Effective Go", "Style guide", "https://go.dev/doc/effective_go")
	r.PosX, r.PosY = 100, 50
	require.NoError(t, r.Create(ctx, sess, p))
	rKey, ok := r.Key()
	require.True(t, ok)
	require.NotNil(t, r.ProjectEdge)
	assert.Len(t, client.RelationshipsBetween(pKey, rKey, RelHasResource), 1)

	reread, found, err := FindResourceByKey(ctx, sess, rKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Effective Go", reread.Name)
	assert.Equal(t, "https://go.dev/doc/effective_go", reread.URL)
	assert.Equal(t, 100.0, reread.PosX)
	assert.Equal(t, 50.0, reread.PosY)

	require.NoError(t, r.SetPosition(ctx, sess, -20, 75.5))
	reread, _, err = FindResourceByKey(ctx, sess, rKey)
	require.NoError(t, err)
	assert.Equal(t, -20.0, reread.PosX)
	assert.Equal(t, 75.5, reread.PosY)

	resources, err := p.Resources(ctx, sess)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "Effective Go", resources[0].Name)
}

func TestResourceCreateSkipsEmptyURL(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	p := NewProject("Notes", "")
	require.NoError(t, p.Create(ctx, sess, owner))

	r := NewResource("Scratch", "A note without a link", "")
	require.NoError(t, r.Create(ctx, sess, p))

	_, ok := r.Get(PropURL)
	assert.False(t, ok, "empty url is never written to the store")
}

func TestTagLifecycle(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	p := NewProject("Reading list", "")
	require.NoError(t, p.Create(ctx, sess, owner))
	pKey, _ := p.Key()

	tag := NewTag("urgent", "#ff0000", 1)
	require.NoError(t, tag.Create(ctx, sess, p))
	tagKey, ok := tag.Key()
	require.True(t, ok)
	require.NotNil(t, tag.ProjectEdge)

	reread, found, err := FindTagByKey(ctx, sess, tagKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "urgent", reread.Name)
	assert.Equal(t, "#ff0000", reread.Color)
	assert.Equal(t, int64(1), reread.Priority)

	require.NoError(t, tag.Rename(ctx, sess, "important"))
	require.NoError(t, tag.SetColor(ctx, sess, "#ffa500"))
	require.NoError(t, tag.SetPriority(ctx, sess, 5))
	reread, _, err = FindTagByKey(ctx, sess, tagKey)
	require.NoError(t, err)
	assert.Equal(t, "important", reread.Name)
	assert.Equal(t, "#ffa500", reread.Color)
	assert.Equal(t, int64(5), reread.Priority)

	home, found, err := tag.Project(ctx, sess)
	require.NoError(t, err)
	require.True(t, found)
	homeKey, _ := home.Key()
	assert.Equal(t, pKey, homeKey)

	tags, err := p.Tags(ctx, sess)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "important", tags[0].Name)
}

func TestTagBelongsTo(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	p1 := NewProject("First", "")
	require.NoError(t, p1.Create(ctx, sess, owner))
	p2 := NewProject("Second", "")
	require.NoError(t, p2.Create(ctx, sess, owner))

	tag := NewTag("urgent", "#ff0000", 1)
	require.NoError(t, tag.Create(ctx, sess, p1))

	in1, err := tag.BelongsTo(ctx, sess, p1)
	require.NoError(t, err)
	assert.True(t, in1)

	in2, err := tag.BelongsTo(ctx, sess, p2)
	require.NoError(t, err)
	assert.False(t, in2, "a tag is scoped to exactly one project")
}

func TestAttachTagGuard(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	p := NewProject("Reading list", "")
	require.NoError(t, p.Create(ctx, sess, owner))

	r := NewResource("Effective Go", "", "")
	require.NoError(t, r.Create(ctx, sess, p))
	tag := NewTag("urgent", "#ff0000", 1)
	require.NoError(t, tag.Create(ctx, sess, p))

	rKey, _ := r.Key()
	tagKey, _ := tag.Key()

	_, err := r.AttachTag(ctx, sess, tag)
	require.NoError(t, err)
	assert.Len(t, client.RelationshipsBetween(rKey, tagKey, RelHasTag), 1)

	// the second attach is refused above the relationship layer
	_, err = r.AttachTag(ctx, sess, tag)
	require.Error(t, err)
	assert.True(t, types.HasCode(err, ErrCodeTagAlreadyAttached))
	assert.Len(t, client.RelationshipsBetween(rKey, tagKey, RelHasTag), 1)

	// the relationship layer itself would have permitted the duplicate
	dup := NewRelationship(RelHasTag, rKey, tagKey)
	_, found, err := dup.Create(ctx, sess)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, client.RelationshipsBetween(rKey, tagKey, RelHasTag), 2)
}

func TestDetachTag(t *testing.T) {
	ctx := context.Background()
	client, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	p := NewProject("Reading list", "")
	require.NoError(t, p.Create(ctx, sess, owner))

	r := NewResource("Effective Go", "", "")
	require.NoError(t, r.Create(ctx, sess, p))
	tag := NewTag("urgent", "#ff0000", 1)
	require.NoError(t, tag.Create(ctx, sess, p))

	rKey, _ := r.Key()
	tagKey, _ := tag.Key()

	_, err := r.AttachTag(ctx, sess, tag)
	require.NoError(t, err)

	detached, err := r.DetachTag(ctx, sess, tag)
	require.NoError(t, err)
	assert.True(t, detached)
	assert.Empty(t, client.RelationshipsBetween(rKey, tagKey, RelHasTag))

	// detaching again is a routine no-op
	detached, err = r.DetachTag(ctx, sess, tag)
	require.NoError(t, err)
	assert.False(t, detached)
}

func TestTaggedResources(t *testing.T) {
	ctx := context.Background()
	_, sess := newEntitySession(t)

	owner := NewUser("kratos-123", "")
	require.NoError(t, owner.Create(ctx, sess))
	p := NewProject("Reading list", "")
	require.NoError(t, p.Create(ctx, sess, owner))

	tag := NewTag("urgent", "#ff0000", 1)
	require.NoError(t, tag.Create(ctx, sess, p))

	r1 := NewResource("First", "", "")
	require.NoError(t, r1.Create(ctx, sess, p))
	r2 := NewResource("Second", "", "")
	require.NoError(t, r2.Create(ctx, sess, p))
	r3 := NewResource("Untagged", "", "")
	require.NoError(t, r3.Create(ctx, sess, p))

	_, err := r1.AttachTag(ctx, sess, tag)
	require.NoError(t, err)
	_, err = r2.AttachTag(ctx, sess, tag)
	require.NoError(t, err)

	tagged, err := tag.TaggedResources(ctx, sess)
	require.NoError(t, err)
	require.Len(t, tagged, 2)
	names := []string{tagged[0].Name, tagged[1].Name}
	assert.ElementsMatch(t, []string{"First", "Second"}, names)

	tags, err := r1.Tags(ctx, sess)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "urgent", tags[0].Name)
}
