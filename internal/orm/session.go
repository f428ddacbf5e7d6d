package orm

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
)

// Session is a queued unit of work against one store session. Prepared
// queries are added with their parameters and executed strictly in order on
// Commit. There is no rollback: a mid-sequence failure stops the commit and
// leaves every earlier statement applied, which callers discover by
// re-querying.
//
// The underlying graph session is owned by the caller; this type never opens
// or closes it.
type Session struct {
	sess   graph.Session
	queue  []pending
	closed bool
}

type pending struct {
	query  CypherQuery
	params map[string]any
}

// NewSession wraps an already-open graph session.
func NewSession(sess graph.Session) *Session {
	return &Session{sess: sess}
}

// Graph exposes the underlying store session for direct execution.
func (s *Session) Graph() graph.Session {
	return s.sess
}

// Add queues a prepared query. Parameter validation happens immediately so
// call-site bugs surface at queue time, before any network traffic.
func (s *Session) Add(query CypherQuery, params map[string]any) error {
	if err := query.validate(params); err != nil {
		return err
	}
	s.queue = append(s.queue, pending{query: query, params: params})
	return nil
}

// Pending returns the number of queued operations.
func (s *Session) Pending() int {
	return len(s.queue)
}

// Commit executes the queued operations in insertion order, each waiting for
// the previous to complete. It stops at the first failure and returns it;
// already-executed statements stay applied. The queue is drained of the
// statements that ran.
func (s *Session) Commit(ctx context.Context) error {
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if _, err := s.sess.Run(ctx, next.query.Text, next.params); err != nil {
			return err
		}
	}
	return nil
}
