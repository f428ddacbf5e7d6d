package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// VertexKey is the store-assigned integer identifier of a node. It is opaque
// and immutable once assigned; a node has no key before its first successful
// create.
type VertexKey int64

// EdgeKey is the store-assigned integer identifier of a relationship. Same
// immutability rule as VertexKey.
type EdgeKey int64

// NodeRecord is the property record returned by a single store round trip for
// a vertex: its key, its labels, and a string-keyed map of scalar properties.
type NodeRecord struct {
	ID     VertexKey
	Labels []string
	Props  map[string]any
}

// RelationshipRecord is the property record for a directed edge. StartID and
// EndID reference the endpoint vertices; the store enforces their existence
// at creation time.
type RelationshipRecord struct {
	ID      EdgeKey
	Type    string
	StartID VertexKey
	EndID   VertexKey
	Props   map[string]any
}

// nodeFromDB converts a driver node into a NodeRecord.
//
// The legacy integer id is used instead of the element id: the persisted
// layout keys every vertex and edge by id(n), and renaming that contract
// would require a migration.
func nodeFromDB(n dbtype.Node) *NodeRecord {
	return &NodeRecord{
		ID:     VertexKey(n.Id),
		Labels: n.Labels,
		Props:  copyProps(n.Props),
	}
}

// relationshipFromDB converts a driver relationship into a RelationshipRecord.
func relationshipFromDB(r dbtype.Relationship) *RelationshipRecord {
	return &RelationshipRecord{
		ID:      EdgeKey(r.Id),
		Type:    r.Type,
		StartID: VertexKey(r.StartId),
		EndID:   VertexKey(r.EndId),
		Props:   copyProps(r.Props),
	}
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// convertValue maps driver values into the record types of this package.
// Nodes and relationships become NodeRecord/RelationshipRecord; scalars pass
// through unchanged.
func convertValue(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return nodeFromDB(val)
	case dbtype.Relationship:
		return relationshipFromDB(val)
	default:
		return v
	}
}
