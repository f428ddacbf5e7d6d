package entity

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/types"
)

// Resource is the basic unit of data in TwigSlot, usually a link to some
// online URL, placed on the project canvas at (pos_x, pos_y).
type Resource struct {
	Node

	Name        string
	Description string
	URL         string
	PosX        float64
	PosY        float64

	// ProjectEdge is the Project -> Resource containment relationship.
	ProjectEdge *Relationship
}

// NewResource creates a pending resource. URL may be empty.
func NewResource(name, description, url string) *Resource {
	return &Resource{
		Node:        *NewNode(LabelResource),
		Name:        name,
		Description: description,
		URL:         url,
	}
}

// FindResourceByKey looks a resource up by vertex key.
func FindResourceByKey(ctx context.Context, sess graph.Session, key graph.VertexKey) (*Resource, bool, error) {
	r := &Resource{Node: *NewNodeWithKey(LabelResource, key)}
	rec, found, err := r.Node.Fetch(ctx, sess)
	if err != nil || !found {
		return nil, false, err
	}
	r.load(rec)
	return r, true, nil
}

// Create inserts the resource vertex, writes its fields one property per
// round trip, and creates the containment edge from project, in that fixed
// order. The sequence is not atomic; a mid-sequence failure leaves a
// resource vertex without a containing edge.
func (r *Resource) Create(ctx context.Context, sess graph.Session, project *Project) error {
	projectKey, ok := project.Key()
	if !ok {
		return types.NewError(ErrCodeMissingParent, "containing project has no key")
	}

	if _, err := r.Node.Create(ctx, sess); err != nil {
		return err
	}
	if _, _, err := r.Set(ctx, sess, PropName, r.Name); err != nil {
		return err
	}
	if _, _, err := r.Set(ctx, sess, PropDescription, r.Description); err != nil {
		return err
	}
	if r.URL != "" {
		if _, _, err := r.Set(ctx, sess, PropURL, r.URL); err != nil {
			return err
		}
	}
	if _, _, err := r.Set(ctx, sess, PropPosX, r.PosX); err != nil {
		return err
	}
	if _, _, err := r.Set(ctx, sess, PropPosY, r.PosY); err != nil {
		return err
	}

	key, _ := r.Key()
	edge := NewRelationship(RelHasResource, projectKey, key)
	if _, _, err := edge.Create(ctx, sess); err != nil {
		return err
	}
	r.ProjectEdge = edge
	r.load(r.rec)
	return nil
}

// SetPosition moves the resource on the canvas. Two per-field writes, each
// with its own resync.
func (r *Resource) SetPosition(ctx context.Context, sess graph.Session, x, y float64) error {
	if _, _, err := r.Set(ctx, sess, PropPosX, x); err != nil {
		return err
	}
	rec, found, err := r.Set(ctx, sess, PropPosY, y)
	if err != nil {
		return err
	}
	if found {
		r.load(rec)
	}
	return nil
}

// AttachTag associates a tag with this resource through a has_tag edge. The
// relationship layer would happily create a duplicate edge, so the attach is
// guarded: an existing edge between the pair means the tag is already
// attached and the call refuses.
func (r *Resource) AttachTag(ctx context.Context, sess graph.Session, tag *Tag) (*Relationship, error) {
	key, ok := r.Key()
	if !ok {
		return nil, types.NewError(ErrCodeMissingParent, "resource has no key")
	}
	tagKey, ok := tag.Key()
	if !ok {
		return nil, types.NewError(ErrCodeMissingParent, "tag has no key")
	}

	edge := NewRelationship(RelHasTag, key, tagKey)
	if _, found, err := edge.FetchEndpoints(ctx, sess); err != nil {
		return nil, err
	} else if found {
		return nil, types.NewError(ErrCodeTagAlreadyAttached, "tag already attached to resource")
	}

	if _, _, err := edge.Create(ctx, sess); err != nil {
		return nil, err
	}
	return edge, nil
}

// DetachTag removes the tagging edge between this resource and tag. Not
// found is reported without error.
func (r *Resource) DetachTag(ctx context.Context, sess graph.Session, tag *Tag) (bool, error) {
	key, ok := r.Key()
	if !ok {
		return false, nil
	}
	tagKey, ok := tag.Key()
	if !ok {
		return false, nil
	}

	edge := NewRelationship(RelHasTag, key, tagKey)
	_, found, err := edge.FetchEndpoints(ctx, sess)
	if err != nil || !found {
		return false, err
	}
	if err := edge.Delete(ctx, sess); err != nil {
		return false, err
	}
	return true, nil
}

// AddPrereq records that other must come before this resource, as a prereq
// edge other -> r. Unlike tagging, prerequisite edges are not guarded
// against duplicates.
func (r *Resource) AddPrereq(ctx context.Context, sess graph.Session, other *Resource) (*Relationship, error) {
	key, ok := r.Key()
	if !ok {
		return nil, types.NewError(ErrCodeMissingParent, "resource has no key")
	}
	otherKey, ok := other.Key()
	if !ok {
		return nil, types.NewError(ErrCodeMissingParent, "prerequisite resource has no key")
	}

	edge := NewRelationship(RelPrereq, otherKey, key)
	if _, _, err := edge.Create(ctx, sess); err != nil {
		return nil, err
	}
	return edge, nil
}

// Tags lists the tags attached to this resource.
func (r *Resource) Tags(ctx context.Context, sess graph.Session) ([]*Tag, error) {
	key, ok := r.Key()
	if !ok {
		return nil, nil
	}

	rows, err := traverseOutQuery(LabelResource, RelHasTag, LabelTag).All(ctx, sess, map[string]any{
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
		tags = append(tags, t)
	}
	return tags, nil
}

// load refreshes the typed fields from a freshly synced record.
func (r *Resource) load(rec *graph.NodeRecord) {
	if rec == nil {
		return
	}
	r.Name = stringProp(rec.Props, PropName)
	r.Description = stringProp(rec.Props, PropDescription)
	r.URL = stringProp(rec.Props, PropURL)
	r.PosX = floatProp(rec.Props, PropPosX)
	r.PosY = floatProp(rec.Props, PropPosY)
}
