package entity

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/orm"
	"github.com/TwigSlot/twig-server/internal/types"
)

// Tag is a project-scoped label that resources can carry. Color is a display
// hint and Priority orders tags in listings.
type Tag struct {
	Node

	Name     string
	Color    string
	Priority int64

	// ProjectEdge is the Project -> Tag scoping relationship.
	ProjectEdge *Relationship
}

// NewTag creates a pending tag.
func NewTag(name, color string, priority int64) *Tag {
	return &Tag{
		Node:     *NewNode(LabelTag),
		Name:     name,
		Color:    color,
		Priority: priority,
	}
}

// FindTagByKey looks a tag up by vertex key.
func FindTagByKey(ctx context.Context, sess graph.Session, key graph.VertexKey) (*Tag, bool, error) {
	t := &Tag{Node: *NewNodeWithKey(LabelTag, key)}
	rec, found, err := t.Node.Fetch(ctx, sess)
	if err != nil || !found {
		return nil, false, err
	}
	t.load(rec)
	return t, true, nil
}

// Create inserts the tag vertex, writes its fields one property per round
// trip, and creates the scoping edge from project, in that fixed order. Not
// atomic: a failure mid-sequence leaves a tag vertex outside any project.
func (t *Tag) Create(ctx context.Context, sess graph.Session, project *Project) error {
	projectKey, ok := project.Key()
	if !ok {
		return types.NewError(ErrCodeMissingParent, "containing project has no key")
	}

	if _, err := t.Node.Create(ctx, sess); err != nil {
		return err
	}
	if _, _, err := t.Set(ctx, sess, PropName, t.Name); err != nil {
		return err
	}
	if _, _, err := t.Set(ctx, sess, PropColor, t.Color); err != nil {
		return err
	}
	if _, _, err := t.Set(ctx, sess, PropPriority, t.Priority); err != nil {
		return err
	}

	key, _ := t.Key()
	edge := NewRelationship(RelProjectTag, projectKey, key)
	if _, _, err := edge.Create(ctx, sess); err != nil {
		return err
	}
	t.ProjectEdge = edge
	t.load(t.rec)
	return nil
}

// Rename writes a new name and resyncs.
func (t *Tag) Rename(ctx context.Context, sess graph.Session, name string) error {
	return t.write(ctx, sess, PropName, name)
}

// SetColor writes a new display color and resyncs.
func (t *Tag) SetColor(ctx context.Context, sess graph.Session, color string) error {
	return t.write(ctx, sess, PropColor, color)
}

// SetPriority writes a new ordering priority and resyncs.
func (t *Tag) SetPriority(ctx context.Context, sess graph.Session, priority int64) error {
	return t.write(ctx, sess, PropPriority, priority)
}

func (t *Tag) write(ctx context.Context, sess graph.Session, property string, value any) error {
	rec, found, err := t.Set(ctx, sess, property, value)
	if err != nil {
		return err
	}
	if !found {
		return types.NewError(orm.ErrCodeNoKey, "tag has no key")
	}
	t.load(rec)
	return nil
}

// Project resolves the project this tag belongs to by walking the scoping
// edge backwards.
func (t *Tag) Project(ctx context.Context, sess graph.Session) (*Project, bool, error) {
	key, ok := t.Key()
	if !ok {
		return nil, false, nil
	}

	rows, err := traverseInQuery(LabelProject, RelProjectTag, LabelTag).All(ctx, sess, map[string]any{
		"uid": int64(key),
	})
	if err != nil {
		return nil, false, err
	}
	if !rows.Next() {
		return nil, false, nil
	}

	record := rows.Record()
	rec, ok := record.Node("a")
	if !ok {
		return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a node record in column a")
	}
	p := &Project{Node: *NewNodeWithKey(LabelProject, rec.ID)}
	p.Node.sync(rec)
	p.load(rec)
	if edge, ok := record.Relationship("e"); ok {
		rel := NewRelationshipWithKey(RelProjectTag, edge.ID)
		rel.sync(edge)
		t.ProjectEdge = rel
	}
	return p, true, nil
}

// BelongsTo reports whether this tag is scoped to the given project. The
// check is the endpoint-guard used before tag mutations that must stay
// within one project.
func (t *Tag) BelongsTo(ctx context.Context, sess graph.Session, project *Project) (bool, error) {
	key, ok := t.Key()
	if !ok {
		return false, nil
	}
	projectKey, ok := project.Key()
	if !ok {
		return false, nil
	}

	edge := NewRelationship(RelProjectTag, projectKey, key)
	_, found, err := edge.FetchEndpoints(ctx, sess)
	return found, err
}

// TaggedResources lists the resources carrying this tag.
func (t *Tag) TaggedResources(ctx context.Context, sess graph.Session) ([]*Resource, error) {
	key, ok := t.Key()
	if !ok {
		return nil, nil
	}

	rows, err := traverseInQuery(LabelResource, RelHasTag, LabelTag).All(ctx, sess, map[string]any{
		"uid": int64(key),
	})
	if err != nil {
		return nil, err
	}

	resources := make([]*Resource, 0, rows.Len())
	for rows.Next() {
		record := rows.Record()
		rec, ok := record.Node("a")
		if !ok {
			return nil, types.NewError(graph.ErrCodeGraphResultParsing,
				"expected a node record in column a")
		}
		r := &Resource{Node: *NewNodeWithKey(LabelResource, rec.ID)}
		r.Node.sync(rec)
		r.load(rec)
		resources = append(resources, r)
	}
	return resources, nil
}

// load refreshes the typed fields from a freshly synced record.
func (t *Tag) load(rec *graph.NodeRecord) {
	if rec == nil {
		return
	}
	t.Name = stringProp(rec.Props, PropName)
	t.Color = stringProp(rec.Props, PropColor)
	t.Priority = intProp(rec.Props, PropPriority)
}
