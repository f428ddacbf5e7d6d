package entity

import (
	"context"

	"github.com/TwigSlot/twig-server/internal/graph"
	"github.com/TwigSlot/twig-server/internal/types"
)

// User is a TwigSlot account vertex. KratosUserID is the stable key supplied
// by the identity provider and treated here as an ordinary property value;
// Username is an optional secondary unique key.
type User struct {
	Node

	KratosUserID string
	Username     string
}

// NewUser creates a pending user. Username may be empty.
func NewUser(kratosUserID, username string) *User {
	return &User{
		Node:         *NewNode(LabelUser),
		KratosUserID: kratosUserID,
		Username:     username,
	}
}

// FindUserByKey looks a user up by vertex key.
func FindUserByKey(ctx context.Context, sess graph.Session, key graph.VertexKey) (*User, bool, error) {
	u := &User{Node: *NewNodeWithKey(LabelUser, key)}
	rec, found, err := u.Node.Fetch(ctx, sess)
	if err != nil || !found {
		return nil, false, err
	}
	u.load(rec)
	return u, true, nil
}

// FindUserByUsername looks a user up by the username natural key.
func FindUserByUsername(ctx context.Context, sess graph.Session, username string) (*User, bool, error) {
	return findUserBy(ctx, sess, PropUsername, username)
}

// FindUserByKratosID looks a user up by the identity provider's subject id.
func FindUserByKratosID(ctx context.Context, sess graph.Session, kratosUserID string) (*User, bool, error) {
	return findUserBy(ctx, sess, PropKratosUserID, kratosUserID)
}

func findUserBy(ctx context.Context, sess graph.Session, property, value string) (*User, bool, error) {
	u := &User{Node: *NewNode(LabelUser)}
	rec, found, err := u.Node.fetchBy(ctx, sess, property, value)
	if err != nil || !found {
		return nil, false, err
	}
	u.load(rec)
	return u, true, nil
}

// EnsureUser returns the user with the given subject id, creating the vertex
// on first sight. The lookup-then-create pair is two round trips; two
// concurrent first sights can both create, which mirrors the store's lack of
// cross-statement transactions.
func EnsureUser(ctx context.Context, sess graph.Session, kratosUserID string) (*User, error) {
	u, found, err := FindUserByKratosID(ctx, sess, kratosUserID)
	if err != nil {
		return nil, err
	}
	if found {
		return u, nil
	}

	u = NewUser(kratosUserID, "")
	if err := u.Create(ctx, sess); err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts the user vertex and writes its identity fields, one
// property per round trip.
func (u *User) Create(ctx context.Context, sess graph.Session) error {
	if _, err := u.Node.Create(ctx, sess); err != nil {
		return err
	}
	if _, _, err := u.Set(ctx, sess, PropKratosUserID, u.KratosUserID); err != nil {
		return err
	}
	if u.Username != "" {
		if _, _, err := u.Set(ctx, sess, PropUsername, u.Username); err != nil {
			return err
		}
	}
	u.load(u.rec)
	return nil
}

// Projects lists the projects this user owns, with the owning edges.
func (u *User) Projects(ctx context.Context, sess graph.Session) ([]*Project, error) {
	key, ok := u.Key()
	if !ok {
		return nil, nil
	}

	rows, err := traverseOutQuery(LabelUser, RelOwns, LabelProject).All(ctx, sess, map[string]any{
		"uid": int64(key),
	})
	if err != nil {
		return nil, err
	}

	projects := make([]*Project, 0, rows.Len())
	for rows.Next() {
		record := rows.Record()
		rec, ok := record.Node("b")
		if !ok {
			return nil, types.NewError(graph.ErrCodeGraphResultParsing,
				"expected a node record in column b")
		}
		p := &Project{Node: *NewNodeWithKey(LabelProject, rec.ID)}
		p.Node.sync(rec)
		p.load(rec)
		if edge, ok := record.Relationship("e"); ok {
			rel := NewRelationshipWithKey(RelOwns, edge.ID)
			rel.sync(edge)
			p.OwnerEdge = rel
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// load refreshes the typed fields from a freshly synced record.
func (u *User) load(rec *graph.NodeRecord) {
	if rec == nil {
		return
	}
	u.KratosUserID = stringProp(rec.Props, PropKratosUserID)
	u.Username = stringProp(rec.Props, PropUsername)
}
