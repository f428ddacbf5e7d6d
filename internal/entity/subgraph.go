package entity

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/types"
)

// EdgePair identifies a prerequisite edge by its ordered endpoint keys.
// The edge's own store key is deliberately not part of the identity:
// duplicate prereq edges between the same pair collapse to one entry.
type EdgePair struct {
	Src graph.VertexKey
	Dst graph.VertexKey
}

// ResourceGraph is the assembled view of one project: every resource it
// contains plus the prerequisite ordering among them.
type ResourceGraph struct {
	Vertices map[graph.VertexKey]*Resource
	Edges    map[EdgePair]struct{}
}

// FetchResourceGraph assembles the resource graph of a project in two
// queries: one for the contained resources, one for the prereq edges among
// them. A project containing no resources reports not found, matching the
// behavior for a project key that does not exist at all.
//
// The edge query does not constrain the far endpoint to this project, so an
// edge pointing at a resource in another project can come back; such edges
// are dropped rather than surfaced, keeping the result closed over its own
// vertex set.
func FetchResourceGraph(ctx context.Context, sess graph.Session, projectKey graph.VertexKey) (*ResourceGraph, bool, error) {
	rows, err := traverseOutQuery(LabelProject, RelHasResource, LabelResource).All(ctx, sess, map[string]any{
		"uid": int64(projectKey),
	})
	if err != nil {
		return nil, false, err
	}

	vertices := make(map[graph.VertexKey]*Resource, rows.Len())
	for rows.Next() {
		record := rows.Record()
		rec, ok := record.Node("b")
		if !ok {
			return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
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
		vertices[rec.ID] = r
	}
	if len(vertices) == 0 {
		return nil, false, nil
	}

	edgeRows, err := subgraphEdgesQuery(LabelProject, RelHasResource, LabelResource, RelPrereq).All(ctx, sess, map[string]any{
		"uid": int64(projectKey),
	})
	if err != nil {
		return nil, false, err
	}

	edges := make(map[EdgePair]struct{}, edgeRows.Len())
	for edgeRows.Next() {
		rec, ok := edgeRows.Record().Relationship("e")
		if !ok {
			return nil, false, types.NewError(graph.ErrCodeGraphResultParsing,
				"expected a relationship record in column e")
		}
		if _, inSet := vertices[rec.StartID]; !inSet {
			continue
		}
		if _, inSet := vertices[rec.EndID]; !inSet {
			continue
		}
		edges[EdgePair{Src: rec.StartID, Dst: rec.EndID}] = struct{}{}
	}

	return &ResourceGraph{Vertices: vertices, Edges: edges}, true, nil
}
