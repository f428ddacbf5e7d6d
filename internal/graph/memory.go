package graph

import (
	"context"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/TwigSlot/twig-server/internal/types"
)

// RecordedCall is one statement execution recorded by the memory client.
type RecordedCall struct {
	Cypher    string
	Params    map[string]any
	Timestamp time.Time
}

// MemoryClient is an in-memory implementation of Client for testing. It keeps
// a real property graph (nodes, directed typed relationships) and interprets
// the fixed statement shapes this repository issues, so tests can exercise
// full multi-step entity protocols without a running store. All calls are
// recorded for verification, and individual runs can be failed on demand to
// observe the documented partial-write states.
type MemoryClient struct {
	mu sync.Mutex

	connected bool
	nodes     map[VertexKey]*memNode
	rels      map[EdgeKey]*memRel
	nextNode  VertexKey
	nextRel   EdgeKey

	calls    []RecordedCall
	failIn   int
	failWith error
}

type memNode struct {
	id     VertexKey
	labels []string
	props  map[string]any
}

type memRel struct {
	id    EdgeKey
	typ   string
	start VertexKey
	end   VertexKey
	props map[string]any
}

// NewMemoryClient creates a new in-memory graph client for testing.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		nodes: make(map[VertexKey]*memNode),
		rels:  make(map[EdgeKey]*memRel),
	}
}

// Connect marks the client connected.
func (c *MemoryClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

// Close marks the client disconnected.
func (c *MemoryClient) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

// Health reports healthy while connected.
func (c *MemoryClient) Health(ctx context.Context) types.HealthStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return types.Unhealthy("not connected")
	}
	return types.Healthy("in-memory graph")
}

// Session opens a session sharing this client's graph.
func (c *MemoryClient) Session(ctx context.Context) Session {
	return &MemorySession{client: c}
}

// FailNthRun makes the n-th Run from now (1-based) return err instead of
// executing. Used to assert observable partial-failure states of multi-step
// entity creation.
func (c *MemoryClient) FailNthRun(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failIn = n
	c.failWith = err
}

// Calls returns a copy of all recorded statement executions.
func (c *MemoryClient) Calls() []RecordedCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RecordedCall, len(c.calls))
	copy(out, c.calls)
	return out
}

// RunCount returns the number of statements executed so far.
func (c *MemoryClient) RunCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// NodeCount returns the number of stored vertices.
func (c *MemoryClient) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// RelationshipCount returns the number of stored edges.
func (c *MemoryClient) RelationshipCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rels)
}

// RelationshipsBetween returns the stored edges from src to dst of the given
// type, for asserting duplicate-edge behavior.
func (c *MemoryClient) RelationshipsBetween(src, dst VertexKey, relType string) []EdgeKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []EdgeKey
	for _, r := range c.rels {
		if r.start == src && r.end == dst && r.typ == relType {
			out = append(out, r.id)
		}
	}
	return out
}

// MemorySession implements Session against a MemoryClient's graph.
type MemorySession struct {
	client *MemoryClient
}

// Statement shapes understood by the memory engine. These mirror the patterns
// produced by the entity layer's query builders; an unrecognized shape is an
// error so drift between the builders and this engine fails loudly in tests.
var (
	reCreateNode    = regexp.MustCompile(`^CREATE \(n:(\w+)\) RETURN n$`)
	reMatchNodeL    = regexp.MustCompile(`^MATCH \(n:(\w+)\) WHERE id\(n\) = \$uid RETURN n$`)
	reMatchNode     = regexp.MustCompile(`^MATCH \(n\) WHERE id\(n\) = \$uid RETURN n$`)
	reSetNodeProp   = regexp.MustCompile("^MATCH \\(n\\) WHERE id\\(n\\) = \\$uid SET n\\.`([^`]+)` = \\$value RETURN n$")
	reDeleteNode    = regexp.MustCompile(`^MATCH \(n\) WHERE id\(n\) = \$uid DETACH DELETE n$`)
	reMatchNodeProp = regexp.MustCompile("^MATCH \\(n:(\\w+)\\) WHERE n\\.`([^`]+)` = \\$value RETURN n$")
	reCreateRel     = regexp.MustCompile(`^MATCH \(a\), \(b\) WHERE id\(a\) = \$src AND id\(b\) = \$dst CREATE \(a\)-\[r:(\w+)\]->\(b\) RETURN r$`)
	reMatchRelKeyT  = regexp.MustCompile(`^MATCH \(\)-\[r:(\w+)\]->\(\) WHERE id\(r\) = \$uid RETURN r$`)
	reMatchRelKey   = regexp.MustCompile(`^MATCH \(\)-\[r\]->\(\) WHERE id\(r\) = \$uid RETURN r$`)
	reMatchRelEndT  = regexp.MustCompile(`^MATCH \(a\)-\[r:(\w+)\]->\(b\) WHERE id\(a\) = \$src AND id\(b\) = \$dst RETURN r$`)
	reMatchRelEnd   = regexp.MustCompile(`^MATCH \(a\)-\[r\]->\(b\) WHERE id\(a\) = \$src AND id\(b\) = \$dst RETURN r$`)
	reDeleteRel     = regexp.MustCompile(`^MATCH \(\)-\[r\]->\(\) WHERE id\(r\) = \$uid DELETE r$`)
	reTraverseOut   = regexp.MustCompile(`^MATCH \(a:(\w+)\)-\[e:(\w+)\]->\(b:(\w+)\) WHERE id\(a\) = \$uid RETURN b, e$`)
	reTraverseIn    = regexp.MustCompile(`^MATCH \(a:(\w+)\)-\[e:(\w+)\]->\(b:(\w+)\) WHERE id\(b\) = \$uid RETURN a, e$`)
	reSubgraphEdges = regexp.MustCompile(`^MATCH \(a:(\w+)\)-\[:(\w+)\]->\(r1:(\w+)\)-\[e:(\w+)\]->\(r2:(\w+)\) WHERE id\(a\) = \$uid RETURN e$`)
)

// Run interprets the statement against the in-memory graph.
func (s *MemorySession) Run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	c := s.client
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, RecordedCall{
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})

	if c.failIn > 0 {
		c.failIn--
		if c.failIn == 0 {
			return nil, c.failWith
		}
	}

	switch {
	case reCreateNode.MatchString(cypher):
		label := reCreateNode.FindStringSubmatch(cypher)[1]
		n := &memNode{id: c.nextNode, labels: []string{label}, props: map[string]any{}}
		c.nextNode++
		c.nodes[n.id] = n
		return &Result{
			Keys:    []string{"n"},
			Records: []Record{{"n": n.record()}},
			Summary: Summary{NodesCreated: 1},
		}, nil

	case reMatchNodeL.MatchString(cypher):
		label := reMatchNodeL.FindStringSubmatch(cypher)[1]
		n, ok := c.nodes[vertexParam(params, "uid")]
		if !ok || !n.hasLabel(label) {
			return &Result{}, nil
		}
		return &Result{Keys: []string{"n"}, Records: []Record{{"n": n.record()}}}, nil

	case reMatchNode.MatchString(cypher):
		n, ok := c.nodes[vertexParam(params, "uid")]
		if !ok {
			return &Result{}, nil
		}
		return &Result{Keys: []string{"n"}, Records: []Record{{"n": n.record()}}}, nil

	case reSetNodeProp.MatchString(cypher):
		name := reSetNodeProp.FindStringSubmatch(cypher)[1]
		n, ok := c.nodes[vertexParam(params, "uid")]
		if !ok {
			return &Result{}, nil
		}
		n.props[name] = params["value"]
		return &Result{
			Keys:    []string{"n"},
			Records: []Record{{"n": n.record()}},
			Summary: Summary{PropertiesSet: 1},
		}, nil

	case reDeleteNode.MatchString(cypher):
		uid := vertexParam(params, "uid")
		if _, ok := c.nodes[uid]; !ok {
			return &Result{}, nil
		}
		delete(c.nodes, uid)
		deleted := 0
		for id, r := range c.rels {
			if r.start == uid || r.end == uid {
				delete(c.rels, id)
				deleted++
			}
		}
		return &Result{Summary: Summary{NodesDeleted: 1, RelationshipsDeleted: deleted}}, nil

	case reMatchNodeProp.MatchString(cypher):
		m := reMatchNodeProp.FindStringSubmatch(cypher)
		label, name := m[1], m[2]
		res := &Result{Keys: []string{"n"}}
		for _, id := range c.sortedNodeKeys() {
			n := c.nodes[id]
			if n.hasLabel(label) && n.props[name] == params["value"] {
				res.Records = append(res.Records, Record{"n": n.record()})
			}
		}
		return res, nil

	case reCreateRel.MatchString(cypher):
		relType := reCreateRel.FindStringSubmatch(cypher)[1]
		src := vertexParam(params, "src")
		dst := vertexParam(params, "dst")
		if _, ok := c.nodes[src]; !ok {
			return &Result{}, nil
		}
		if _, ok := c.nodes[dst]; !ok {
			return &Result{}, nil
		}
		r := &memRel{id: c.nextRel, typ: relType, start: src, end: dst, props: map[string]any{}}
		c.nextRel++
		c.rels[r.id] = r
		return &Result{
			Keys:    []string{"r"},
			Records: []Record{{"r": r.record()}},
			Summary: Summary{RelationshipsCreated: 1},
		}, nil

	case reMatchRelKeyT.MatchString(cypher):
		relType := reMatchRelKeyT.FindStringSubmatch(cypher)[1]
		r, ok := c.rels[edgeParam(params, "uid")]
		if !ok || r.typ != relType {
			return &Result{}, nil
		}
		return &Result{Keys: []string{"r"}, Records: []Record{{"r": r.record()}}}, nil

	case reMatchRelKey.MatchString(cypher):
		r, ok := c.rels[edgeParam(params, "uid")]
		if !ok {
			return &Result{}, nil
		}
		return &Result{Keys: []string{"r"}, Records: []Record{{"r": r.record()}}}, nil

	case reMatchRelEndT.MatchString(cypher), reMatchRelEnd.MatchString(cypher):
		var relType string
		if m := reMatchRelEndT.FindStringSubmatch(cypher); m != nil {
			relType = m[1]
		}
		src := vertexParam(params, "src")
		dst := vertexParam(params, "dst")
		res := &Result{Keys: []string{"r"}}
		for _, id := range c.sortedRelKeys() {
			r := c.rels[id]
			if r.start == src && r.end == dst && (relType == "" || r.typ == relType) {
				res.Records = append(res.Records, Record{"r": r.record()})
			}
		}
		return res, nil

	case reDeleteRel.MatchString(cypher):
		uid := edgeParam(params, "uid")
		if _, ok := c.rels[uid]; !ok {
			return &Result{}, nil
		}
		delete(c.rels, uid)
		return &Result{Summary: Summary{RelationshipsDeleted: 1}}, nil

	case reTraverseOut.MatchString(cypher):
		m := reTraverseOut.FindStringSubmatch(cypher)
		srcLabel, relType, dstLabel := m[1], m[2], m[3]
		uid := vertexParam(params, "uid")
		res := &Result{Keys: []string{"b", "e"}}
		a, ok := c.nodes[uid]
		if !ok || !a.hasLabel(srcLabel) {
			return res, nil
		}
		for _, id := range c.sortedRelKeys() {
			r := c.rels[id]
			if r.start != uid || r.typ != relType {
				continue
			}
			b, ok := c.nodes[r.end]
			if !ok || !b.hasLabel(dstLabel) {
				continue
			}
			res.Records = append(res.Records, Record{"b": b.record(), "e": r.record()})
		}
		return res, nil

	case reTraverseIn.MatchString(cypher):
		m := reTraverseIn.FindStringSubmatch(cypher)
		srcLabel, relType, dstLabel := m[1], m[2], m[3]
		uid := vertexParam(params, "uid")
		res := &Result{Keys: []string{"a", "e"}}
		b, ok := c.nodes[uid]
		if !ok || !b.hasLabel(dstLabel) {
			return res, nil
		}
		for _, id := range c.sortedRelKeys() {
			r := c.rels[id]
			if r.end != uid || r.typ != relType {
				continue
			}
			a, ok := c.nodes[r.start]
			if !ok || !a.hasLabel(srcLabel) {
				continue
			}
			res.Records = append(res.Records, Record{"a": a.record(), "e": r.record()})
		}
		return res, nil

	case reSubgraphEdges.MatchString(cypher):
		m := reSubgraphEdges.FindStringSubmatch(cypher)
		rootLabel, containType, midLabel, edgeType, farLabel := m[1], m[2], m[3], m[4], m[5]
		uid := vertexParam(params, "uid")
		res := &Result{Keys: []string{"e"}}
		root, ok := c.nodes[uid]
		if !ok || !root.hasLabel(rootLabel) {
			return res, nil
		}
		for _, cid := range c.sortedRelKeys() {
			contain := c.rels[cid]
			if contain.start != uid || contain.typ != containType {
				continue
			}
			mid, ok := c.nodes[contain.end]
			if !ok || !mid.hasLabel(midLabel) {
				continue
			}
			for _, eid := range c.sortedRelKeys() {
				e := c.rels[eid]
				if e.start != mid.id || e.typ != edgeType {
					continue
				}
				far, ok := c.nodes[e.end]
				if !ok || !far.hasLabel(farLabel) {
					continue
				}
				res.Records = append(res.Records, Record{"e": e.record()})
			}
		}
		return res, nil
	}

	return nil, types.NewError(ErrCodeGraphInvalidQuery,
		"memory engine does not understand statement: "+cypher)
}

// Close is a no-op for memory sessions.
func (s *MemorySession) Close(ctx context.Context) error {
	return nil
}

func (n *memNode) hasLabel(label string) bool {
	for _, l := range n.labels {
		if l == label {
			return true
		}
	}
	return false
}

func (n *memNode) record() *NodeRecord {
	return &NodeRecord{
		ID:     n.id,
		Labels: append([]string(nil), n.labels...),
		Props:  copyProps(n.props),
	}
}

func (r *memRel) record() *RelationshipRecord {
	return &RelationshipRecord{
		ID:      r.id,
		Type:    r.typ,
		StartID: r.start,
		EndID:   r.end,
		Props:   copyProps(r.props),
	}
}

// sortedNodeKeys keeps result order deterministic for tests.
func (c *MemoryClient) sortedNodeKeys() []VertexKey {
	keys := make([]VertexKey, 0, len(c.nodes))
	for k := range c.nodes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *MemoryClient) sortedRelKeys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(c.rels))
	for k := range c.rels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func vertexParam(params map[string]any, name string) VertexKey {
	switch v := params[name].(type) {
	case int64:
		return VertexKey(v)
	case VertexKey:
		return v
	case int:
		return VertexKey(v)
	default:
		return -1
	}
}

func edgeParam(params map[string]any, name string) EdgeKey {
	switch v := params[name].(type) {
	case int64:
		return EdgeKey(v)
	case EdgeKey:
		return v
	case int:
		return EdgeKey(v)
	default:
		return -1
	}
}
