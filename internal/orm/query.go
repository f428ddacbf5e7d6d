// Package orm is a deliberately small object-graph mapping layer: prepared
// Cypher queries with declared parameters and result shape, executed against
// a caller-owned store session.
package orm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/types"
)

// Operation classifies what a prepared query does to the store.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpRead   Operation = "READ"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// CypherQuery is a typed, parameterized query description decoupled from
// execution: the pattern text, the exact set of required parameter names,
// whether one or many records are expected, and which named column of the
// result to extract.
type CypherQuery struct {
	Op Operation

	// Text is the Cypher pattern. Patterns are written by this repository,
	// never assembled from user input.
	Text string

	// Params lists the required parameter names. Execution validates the
	// supplied set matches exactly; this is a stricter contract than the
	// underlying store, to catch call-site bugs before they reach the
	// network.
	Params []string

	// Single declares that exactly zero or one record is expected. More than
	// one is an AmbiguousResult error.
	Single bool

	// ReturnKey names the result column to extract.
	ReturnKey string
}

func (q CypherQuery) String() string {
	return q.Text
}

// validate checks the supplied parameter set against the declared one.
func (q CypherQuery) validate(params map[string]any) error {
	if len(params) != len(q.Params) {
		return q.mismatch(params)
	}
	for _, name := range q.Params {
		if _, ok := params[name]; !ok {
			return q.mismatch(params)
		}
	}
	return nil
}

func (q CypherQuery) mismatch(params map[string]any) error {
	supplied := make([]string, 0, len(params))
	for name := range params {
		supplied = append(supplied, name)
	}
	sort.Strings(supplied)
	return types.NewError(ErrCodeParameterMismatch,
		fmt.Sprintf("parameters [%s] do not match required parameters [%s]",
			strings.Join(supplied, ", "), strings.Join(q.Params, ", ")))
}

// One executes a query declared Single. It returns the extracted column
// value and found=true when exactly one record came back, found=false when
// zero did (a routine, typed absence), and an error on parameter mismatch,
// ambiguous results, or store failure.
func (q CypherQuery) One(ctx context.Context, sess graph.Session, params map[string]any) (any, bool, error) {
	if err := q.validate(params); err != nil {
		return nil, false, err
	}

	res, err := sess.Run(ctx, q.Text, params)
	if err != nil {
		return nil, false, err
	}

	switch len(res.Records) {
	case 0:
		return nil, false, nil
	case 1:
		return res.Records[0][q.ReturnKey], true, nil
	default:
		return nil, false, types.NewError(ErrCodeAmbiguousResult,
			fmt.Sprintf("query declared single but returned %d records", len(res.Records)))
	}
}

// All executes a query declared for many records and returns a consume-once
// cursor over them. The cursor is finite and not restartable without
// re-execution.
func (q CypherQuery) All(ctx context.Context, sess graph.Session, params map[string]any) (*Rows, error) {
	if err := q.validate(params); err != nil {
		return nil, err
	}

	res, err := sess.Run(ctx, q.Text, params)
	if err != nil {
		return nil, err
	}

	return &Rows{key: q.ReturnKey, records: res.Records, pos: -1}, nil
}

// Run executes a query for its side effects only (deletes), returning the
// statement summary.
func (q CypherQuery) Run(ctx context.Context, sess graph.Session, params map[string]any) (graph.Summary, error) {
	if err := q.validate(params); err != nil {
		return graph.Summary{}, err
	}

	res, err := sess.Run(ctx, q.Text, params)
	if err != nil {
		return graph.Summary{}, err
	}
	return res.Summary, nil
}

// Rows is a finite, consume-once cursor over decoded records.
type Rows struct {
	key     string
	records []graph.Record
	pos     int
}

// Next advances the cursor; it returns false once the rows are exhausted.
func (r *Rows) Next() bool {
	if r.pos+1 >= len(r.records) {
		return false
	}
	r.pos++
	return true
}

// Value returns the extracted column of the current row.
func (r *Rows) Value() any {
	return r.records[r.pos][r.key]
}

// Record returns the full current row, for queries that return both sides of
// a traversal.
func (r *Rows) Record() graph.Record {
	return r.records[r.pos]
}

// Len returns the total number of rows the cursor was created with.
func (r *Rows) Len() int {
	return len(r.records)
}
