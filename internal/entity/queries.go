package entity

import (
	"fmt"

	"github.com/TwigSlot/twig-server/internal/orm"
)

// Every Cypher pattern this package issues is built here, as data: pattern
// text plus declared parameters and result shape. Entity code composes these
// instead of hand-rolling query strings per call site.
//
// Labels, relationship types, and property names are interpolated directly
// into the pattern text because Cypher cannot parameterize them; all such
// values come from the constants in schema.go, never from callers' input.

func createNodeQuery(label string) orm.CypherQuery {
	return orm.CypherQuery{
		Op:        orm.OpCreate,
		Text:      fmt.Sprintf("CREATE (n:%s) RETURN n", label),
		Single:    true,
		ReturnKey: "n",
	}
}

func nodeByKeyQuery(label string) orm.CypherQuery {
	text := "MATCH (n) WHERE id(n) = $uid RETURN n"
	if label != "" {
		text = fmt.Sprintf("MATCH (n:%s) WHERE id(n) = $uid RETURN n", label)
	}
	return orm.CypherQuery{
		Op:        orm.OpRead,
		Text:      text,
		Params:    []string{"uid"},
		Single:    true,
		ReturnKey: "n",
	}
}

func nodeByPropertyQuery(label, property string) orm.CypherQuery {
	return orm.CypherQuery{
		Op:        orm.OpRead,
		Text:      fmt.Sprintf("MATCH (n:%s) WHERE n.`%s` = $value RETURN n", label, property),
		Params:    []string{"value"},
		Single:    true,
		ReturnKey: "n",
	}
}

func setNodePropertyQuery(property string) orm.CypherQuery {
	return orm.CypherQuery{
		Op:        orm.OpUpdate,
		Text:      fmt.Sprintf("MATCH (n) WHERE id(n) = $uid SET n.`%s` = $value RETURN n", property),
		Params:    []string{"uid", "value"},
		Single:    true,
		ReturnKey: "n",
	}
}

func deleteNodeQuery() orm.CypherQuery {
	return orm.CypherQuery{
		Op:     orm.OpDelete,
		Text:   "MATCH (n) WHERE id(n) = $uid DETACH DELETE n",
		Params: []string{"uid"},
	}
}

func createRelationshipQuery(relType string) orm.CypherQuery {
	return orm.CypherQuery{
		Op: orm.OpCreate,
		Text: fmt.Sprintf(
			"MATCH (a), (b) WHERE id(a) = $src AND id(b) = $dst CREATE (a)-[r:%s]->(b) RETURN r",
			relType),
		Params:    []string{"src", "dst"},
		Single:    true,
		ReturnKey: "r",
	}
}

func relationshipByKeyQuery(relType string) orm.CypherQuery {
	text := "MATCH ()-[r]->() WHERE id(r) = $uid RETURN r"
	if relType != "" {
		text = fmt.Sprintf("MATCH ()-[r:%s]->() WHERE id(r) = $uid RETURN r", relType)
	}
	return orm.CypherQuery{
		Op:        orm.OpRead,
		Text:      text,
		Params:    []string{"uid"},
		Single:    true,
		ReturnKey: "r",
	}
}

func relationshipByEndpointsQuery(relType string) orm.CypherQuery {
	text := "MATCH (a)-[r]->(b) WHERE id(a) = $src AND id(b) = $dst RETURN r"
	if relType != "" {
		text = fmt.Sprintf(
			"MATCH (a)-[r:%s]->(b) WHERE id(a) = $src AND id(b) = $dst RETURN r", relType)
	}
	return orm.CypherQuery{
		Op:        orm.OpRead,
		Text:      text,
		Params:    []string{"src", "dst"},
		Single:    true,
		ReturnKey: "r",
	}
}

func deleteRelationshipQuery() orm.CypherQuery {
	return orm.CypherQuery{
		Op:     orm.OpDelete,
		Text:   "MATCH ()-[r]->() WHERE id(r) = $uid DELETE r",
		Params: []string{"uid"},
	}
}

// traverseOutQuery lists (b, e) for every a-[e]->b edge leaving the vertex
// bound to $uid.
func traverseOutQuery(srcLabel, relType, dstLabel string) orm.CypherQuery {
	return orm.CypherQuery{
		Op: orm.OpRead,
		Text: fmt.Sprintf(
			"MATCH (a:%s)-[e:%s]->(b:%s) WHERE id(a) = $uid RETURN b, e",
			srcLabel, relType, dstLabel),
		Params:    []string{"uid"},
		ReturnKey: "b",
	}
}

// traverseInQuery lists (a, e) for every a-[e]->b edge arriving at the
// vertex bound to $uid.
func traverseInQuery(srcLabel, relType, dstLabel string) orm.CypherQuery {
	return orm.CypherQuery{
		Op: orm.OpRead,
		Text: fmt.Sprintf(
			"MATCH (a:%s)-[e:%s]->(b:%s) WHERE id(b) = $uid RETURN a, e",
			srcLabel, relType, dstLabel),
		Params:    []string{"uid"},
		ReturnKey: "a",
	}
}

// subgraphEdgesQuery lists the ordering edges among the vertices contained
// by the root: root-[:contain]->(r1)-[e:edge]->(r2). The far endpoint is not
// constrained to the root's contained set here; the assembler drops edges
// whose endpoints fall outside the fetched vertex set.
func subgraphEdgesQuery(rootLabel, containType, nodeLabel, edgeType string) orm.CypherQuery {
	return orm.CypherQuery{
		Op: orm.OpRead,
		Text: fmt.Sprintf(
			"MATCH (a:%s)-[:%s]->(r1:%s)-[e:%s]->(r2:%s) WHERE id(a) = $uid RETURN e",
			rootLabel, containType, nodeLabel, edgeType, nodeLabel),
		Params:    []string{"uid"},
		ReturnKey: "e",
	}
}
