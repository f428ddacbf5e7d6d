package entity

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/orm"
	"github.com/TwigSlot/twig-server/internal/types"
)

// Project is a folder-like container of resources, owned by a user through
// an "owns" edge.
type Project struct {
	Node

	Name        string
	Description string

	// OwnerEdge is the User -> Project owning relationship, populated by
	// Create and by listing traversals.
	OwnerEdge *Relationship
}

// NewProject creates a pending project.
func NewProject(name, description string) *Project {
	return &Project{
		Node:        *NewNode(LabelProject),
		Name:        name,
		Description: description,
	}
}

// FindProjectByKey looks a project up by vertex key.
func FindProjectByKey(ctx context.Context, sess graph.Session, key graph.VertexKey) (*Project, bool, error) {
	p := &Project{Node: *NewNodeWithKey(LabelProject, key)}
	rec, found, err := p.Node.Fetch(ctx, sess)
	if err != nil || !found {
		return nil, false, err
	}
	p.load(rec)
	return p, true, nil
}

// Create inserts the project vertex, writes its fields, and creates the
// owning edge from owner, in that fixed order. The sequence is not atomic:
// a failure after the vertex insert leaves a project vertex with no owner
// edge, observable by re-querying. The owner must already exist in the
// store.
func (p *Project) Create(ctx context.Context, sess graph.Session, owner *User) error {
	ownerKey, ok := owner.Key()
	if !ok {
		return types.NewError(ErrCodeMissingParent, "project owner has no key")
	}

	if _, err := p.Node.Create(ctx, sess); err != nil {
		return err
	}
	if _, _, err := p.Set(ctx, sess, PropName, p.Name); err != nil {
		return err
	}
	if _, _, err := p.Set(ctx, sess, PropDescription, p.Description); err != nil {
		return err
	}

	key, _ := p.Key()
	edge := NewRelationship(RelOwns, ownerKey, key)
	if _, _, err := edge.Create(ctx, sess); err != nil {
		return err
	}
	p.OwnerEdge = edge
	p.load(p.rec)
	return nil
}

// Rename writes a new name and resyncs.
func (p *Project) Rename(ctx context.Context, sess graph.Session, name string) error {
	rec, found, err := p.Set(ctx, sess, PropName, name)
	if err != nil {
		return err
	}
	if !found {
		return types.NewError(orm.ErrCodeNoKey, "project has no key")
	}
	p.load(rec)
	return nil
}

// SetDescription writes a new description and resyncs.
func (p *Project) SetDescription(ctx context.Context, sess graph.Session, description string) error {
	rec, found, err := p.Set(ctx, sess, PropDescription, description)
	if err != nil {
		return err
	}
	if !found {
		return types.NewError(orm.ErrCodeNoKey, "project has no key")
	}
	p.load(rec)
	return nil
}

// Owner resolves the user owning this project by walking the owns edge
// backwards.
func (p *Project) Owner(ctx context.Context, sess graph.Session) (*User, bool, error) {
	key, ok := p.Key()
	if !ok {
		return nil, false, nil
	}

	rows, err := traverseInQuery(LabelUser, RelOwns, LabelProject).All(ctx, sess, map[string]any{
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
	u := &User{Node: *NewNodeWithKey(LabelUser, rec.ID)}
	u.Node.sync(rec)
	u.load(rec)
	if edge, ok := record.Relationship("e"); ok {
		rel := NewRelationshipWithKey(RelOwns, edge.ID)
		rel.sync(edge)
		p.OwnerEdge = rel
	}
	return u, true, nil
}

// Resources lists the resources contained in this project.
func (p *Project) Resources(ctx context.Context, sess graph.Session) ([]*Resource, error) {
	key, ok := p.Key()
	if !ok {
		return nil, nil
	}

	rows, err := traverseOutQuery(LabelProject, RelHasResource, LabelResource).All(ctx, sess, map[string]any{
		"uid": int64(key),
	})
	if err != nil {
		return nil, err
	}

	resources := make([]*Resource, 0, rows.Len())
	for rows.Next() {
		record := rows.Record()
		rec, ok := record.Node("b")
		if !ok {
			return nil, types.NewError(graph.ErrCodeGraphResultParsing,
				"expected a node record in column b")
		}
		r := &Resource{Node: *NewNodeWithKey(LabelResource, rec.ID)}
		r.Node.sync(rec)
		r.load(rec)
		if edge, ok := record.Relationship("e"); ok {
			rel := NewRelationshipWithKey(RelHasResource, edge.ID)
			rel.sync(edge)
			r.ProjectEdge = rel
		}
		resources = append(resources, r)
	}
	return resources, nil
}

// Tags lists the tags defined under this project.
func (p *Project) Tags(ctx context.Context, sess graph.Session) ([]*Tag, error) {
	key, ok := p.Key()
	if !ok {
		return nil, nil
	}

	rows, err := traverseOutQuery(LabelProject, RelProjectTag, LabelTag).All(ctx, sess, map[string]any{
		"uid": int64(key),
	})
	if err != nil {
		return nil, err
	}

	tags := make([]*Tag, 0, rows.Len())
	for rows.Next() {
		record := rows.Record()
		rec, ok := record.Node("b")
		if !ok {
			return nil, types.NewError(graph.ErrCodeGraphResultParsing,
				"expected a node record in column b")
		}
		t := &Tag{Node: *NewNodeWithKey(LabelTag, rec.ID)}
		t.Node.sync(rec)
		t.load(rec)
		if edge, ok := record.Relationship("e"); ok {
			rel := NewRelationshipWithKey(RelProjectTag, edge.ID)
			rel.sync(edge)
			t.ProjectEdge = rel
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// load refreshes the typed fields from a freshly synced record.
func (p *Project) load(rec *graph.NodeRecord) {
	if rec == nil {
		return
	}
	p.Name = stringProp(rec.Props, PropName)
	p.Description = stringProp(rec.Props, PropDescription)
}
