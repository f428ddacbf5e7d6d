package entity

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/orm"
	"github.com/TwigSlot/twig-server/internal/types"
)

// Relationship owns the protocol for a single directed, typed edge between
// two vertex keys. Edges are first-class: they have their own store-assigned
// key and property map.
//
// This layer does not enforce edge uniqueness: creating an edge that already
// exists between the same ordered pair with the same type produces a
// duplicate. Callers that need "at most one" must check via FetchEndpoints
// first.
type Relationship struct {
	relType string
	key     *graph.EdgeKey
	src     *graph.VertexKey
	dst     *graph.VertexKey
	props   map[string]any
	rec     *graph.RelationshipRecord
}

// NewRelationship creates a pending edge from src to dst.
func NewRelationship(relType string, src, dst graph.VertexKey) *Relationship {
	s, d := src, dst
	return &Relationship{relType: relType, src: &s, dst: &d, props: map[string]any{}}
}

// NewRelationshipWithKey creates a relationship that claims an existing edge
// key; Fetch verifies the claim and fills in the endpoints.
func NewRelationshipWithKey(relType string, key graph.EdgeKey) *Relationship {
	k := key
	return &Relationship{relType: relType, key: &k, props: map[string]any{}}
}

// Type returns the edge type.
func (r *Relationship) Type() string {
	return r.relType
}

// Key returns the store-assigned edge key, if one has been assigned.
func (r *Relationship) Key() (graph.EdgeKey, bool) {
	if r.key == nil {
		return 0, false
	}
	return *r.key, true
}

// Endpoints returns the source and target vertex keys, when both are known.
func (r *Relationship) Endpoints() (src, dst graph.VertexKey, ok bool) {
	if r.src == nil || r.dst == nil {
		return 0, 0, false
	}
	return *r.src, *r.dst, true
}

// Properties returns the local property cache.
func (r *Relationship) Properties() map[string]any {
	return r.props
}

func (r *Relationship) sync(rec *graph.RelationshipRecord) {
	r.rec = rec
	r.props = map[string]any{}
	if rec == nil {
		r.key = nil
		return
	}
	k := rec.ID
	s, d := rec.StartID, rec.EndID
	r.key = &k
	r.src = &s
	r.dst = &d
	r.props[PropUID] = int64(rec.ID)
	for name, value := range rec.Props {
		r.props[name] = value
	}
}

// Create inserts the edge. When either endpoint key is missing it returns
// (nil, false, nil): the edge cannot be created yet, which is not the same
// as the store rejecting it. When both keys are set but the store finds no
// matching endpoint vertices (stale or wrong keys), creation fails hard and
// no edge record is left behind. Re-creating an edge that already has a key
// is a no-op.
func (r *Relationship) Create(ctx context.Context, sess graph.Session) (*graph.RelationshipRecord, bool, error) {
	if r.key != nil {
		return r.rec, true, nil
	}
	if r.src == nil || r.dst == nil {
		return nil, false, nil
	}

	v, found, err := createRelationshipQuery(r.relType).One(ctx, sess, map[string]any{
		"src": int64(*r.src),
		"dst": int64(*r.dst),
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, orm.NewCreationFailed(r.relType, map[string]any{
			"src": int64(*r.src),
			"dst": int64(*r.dst),
		})
	}

	rec, ok := v.(*graph.RelationshipRecord)
	if !ok {
		return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a relationship record")
	}
	r.sync(rec)
	return rec, true, nil
}

// Fetch reads the edge matching the current key. Without a key it reports
// not found without a store round trip.
func (r *Relationship) Fetch(ctx context.Context, sess graph.Session) (*graph.RelationshipRecord, bool, error) {
	if r.key == nil {
		return nil, false, nil
	}

	v, found, err := relationshipByKeyQuery(r.relType).One(ctx, sess, map[string]any{
		"uid": int64(*r.key),
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		r.sync(nil)
		return nil, false, nil
	}

	rec, ok := v.(*graph.RelationshipRecord)
	if !ok {
		return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a relationship record")
	}
	r.sync(rec)
	return rec, true, nil
}

// FetchEndpoints reads the edge by its ordered endpoint pair and type,
// the existence check for workflows that have no edge key yet ("is this tag
// already attached?"). No edge between the endpoints is a routine not-found,
// not an error.
func (r *Relationship) FetchEndpoints(ctx context.Context, sess graph.Session) (*graph.RelationshipRecord, bool, error) {
	if r.src == nil || r.dst == nil {
		return nil, false, nil
	}

	v, found, err := relationshipByEndpointsQuery(r.relType).One(ctx, sess, map[string]any{
		"src": int64(*r.src),
		"dst": int64(*r.dst),
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	rec, ok := v.(*graph.RelationshipRecord)
	if !ok {
		return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a relationship record")
	}
	r.sync(rec)
	return rec, true, nil
}

// Delete removes the edge without affecting either endpoint vertex, then
// clears the local key and cache. Deleting an edge that was never created
// fails.
func (r *Relationship) Delete(ctx context.Context, sess graph.Session) error {
	if r.key == nil {
		return types.NewError(orm.ErrCodeNoKey, "no key to delete")
	}

	if _, err := deleteRelationshipQuery().Run(ctx, sess, map[string]any{
		"uid": int64(*r.key),
	}); err != nil {
		return err
	}

	// endpoints stay known so the edge could be re-created
	r.sync(nil)
	return nil
}
