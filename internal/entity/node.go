package entity

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/orm"
	"github.com/TwigSlot/twig-server/internal/types"
)

// Node owns the protocol against a single vertex: identity (the
// store-assigned key), the local property cache, and query/create/update/
// delete. Domain entities compose it.
//
// The local cache follows a write-then-resync rule: every successful write is
// followed by a re-read of the full record, and the cache only ever holds
// what the store last returned (plus the key itself under "uid"). The store
// may normalize property types, so optimistic local mutation would drift.
type Node struct {
	label string
	key   *graph.VertexKey
	props map[string]any
	rec   *graph.NodeRecord
}

// NewNode creates a pending-create node carrying the given label. It does
// not exist in the store until Create is called.
func NewNode(label string) *Node {
	return &Node{label: label, props: map[string]any{}}
}

// NewNodeWithKey creates a node that claims an existing key. The claim is
// verified by the next Fetch; until then the property cache is empty.
func NewNodeWithKey(label string, key graph.VertexKey) *Node {
	k := key
	return &Node{label: label, key: &k, props: map[string]any{}}
}

// Label returns the vertex label this node carries.
func (n *Node) Label() string {
	return n.label
}

// Key returns the store-assigned key, if one has been assigned.
func (n *Node) Key() (graph.VertexKey, bool) {
	if n.key == nil {
		return 0, false
	}
	return *n.key, true
}

// Properties returns the local property cache: the fields of the most recent
// successful store read or write, keyed by property name, with the vertex
// key mirrored under "uid".
func (n *Node) Properties() map[string]any {
	return n.props
}

// Get returns one cached property value.
func (n *Node) Get(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

// sync replaces the local cache with a freshly read record. A nil record
// means the vertex was not found: the key is dropped and the node reverts to
// pending-create, so callers treat it as "does not exist", never as "exists
// with empty properties".
func (n *Node) sync(rec *graph.NodeRecord) {
	n.rec = rec
	n.props = map[string]any{}
	if rec == nil {
		n.key = nil
		return
	}
	k := rec.ID
	n.key = &k
	n.props[PropUID] = int64(rec.ID)
	for name, value := range rec.Props {
		n.props[name] = value
	}
}

// Fetch reads the vertex matching the current key, refreshing the local
// cache from the result. Without a key it reports not found immediately, no
// store round trip.
func (n *Node) Fetch(ctx context.Context, sess graph.Session) (*graph.NodeRecord, bool, error) {
	if n.key == nil {
		return nil, false, nil
	}

	v, found, err := nodeByKeyQuery(n.label).One(ctx, sess, map[string]any{
		"uid": int64(*n.key),
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		n.sync(nil)
		return nil, false, nil
	}

	rec, ok := v.(*graph.NodeRecord)
	if !ok {
		return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a node record")
	}
	n.sync(rec)
	return rec, true, nil
}

// fetchBy reads the vertex whose property equals value, the natural-key
// lookup path. More than one match means the natural key is not unique and
// surfaces as an ambiguous-result error.
func (n *Node) fetchBy(ctx context.Context, sess graph.Session, property string, value any) (*graph.NodeRecord, bool, error) {
	v, found, err := nodeByPropertyQuery(n.label, property).One(ctx, sess, map[string]any{
		"value": value,
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	rec, ok := v.(*graph.NodeRecord)
	if !ok {
		return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a node record")
	}
	n.sync(rec)
	return rec, true, nil
}

// Create inserts a new, propertyless vertex with this node's label and
// assigns the resulting key. Creating a node that already has a key is a
// no-op returning the current record; callers apply property writes
// individually afterwards.
func (n *Node) Create(ctx context.Context, sess graph.Session) (*graph.NodeRecord, error) {
	if n.key != nil {
		return n.rec, nil
	}

	v, found, err := createNodeQuery(n.label).One(ctx, sess, map[string]any{})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, orm.NewCreationFailed(n.label, n.props)
	}

	rec, ok := v.(*graph.NodeRecord)
	if !ok {
		return nil, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a node record")
	}
	n.sync(rec)
	return rec, nil
}

// Set writes a single property on the vertex identified by the current key,
// then re-reads the full record to refresh the local cache. Without a key it
// reports not found; the value was never staged anywhere.
func (n *Node) Set(ctx context.Context, sess graph.Session, name string, value any) (*graph.NodeRecord, bool, error) {
	if n.key == nil {
		return nil, false, nil
	}

	v, found, err := setNodePropertyQuery(name).One(ctx, sess, map[string]any{
		"uid":   int64(*n.key),
		"value": value,
	})
	if err != nil {
		return nil, false, err
	}
	if !found {
		// vertex vanished between operations
		n.sync(nil)
		return nil, false, nil
	}

	rec, ok := v.(*graph.NodeRecord)
	if !ok {
		return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
			"expected a node record")
	}
	n.sync(rec)
	return rec, true, nil
}

// Delete detach-deletes the vertex, removing all incident edges, and clears
// the local key and cache. Deleting a node that was never created is a
// programming error and fails.
func (n *Node) Delete(ctx context.Context, sess graph.Session) error {
	if n.key == nil {
		return types.NewError(orm.ErrCodeNoKey, "no key to delete")
	}

	if _, err := deleteNodeQuery().Run(ctx, sess, map[string]any{
		"uid": int64(*n.key),
	}); err != nil {
		return err
	}

	n.sync(nil)
	return nil
}
