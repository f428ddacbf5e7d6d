package graph

import (
	"context"
	"time"

	"github.com/TwigSlot/twig-server/internal/types"
)

// Client provides an interface for graph database connections.
// Implementations must be thread-safe for concurrent access.
type Client interface {
	// Connect establishes a connection to the graph database.
	// Returns an error if connection fails.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	// Should be called when the client is no longer needed.
	Close(ctx context.Context) error

	// Health returns the current health status of the graph database connection.
	Health(ctx context.Context) types.HealthStatus

	// Session opens a new unit-of-work session. The caller owns the session
	// and is responsible for closing it; the mapping layer only consumes an
	// already-open session handle.
	Session(ctx context.Context) Session
}

// Session is the single boundary between this module and the store: run a
// parameterized pattern, get back zero, one, or many property records. Each
// Run is one blocking round trip, auto-committed per statement; there are no
// multi-statement transactions. A session must not be shared by two logical
// operations concurrently, but may be reused sequentially.
type Session interface {
	Run(ctx context.Context, cypher string, params map[string]any) (*Result, error)
	Close(ctx context.Context) error
}

// Record is one result row, keyed by the RETURN column names. Values are
// *NodeRecord, *RelationshipRecord, or plain scalars.
type Record map[string]any

// Node extracts the named column as a node record.
func (r Record) Node(key string) (*NodeRecord, bool) {
	n, ok := r[key].(*NodeRecord)
	return n, ok
}

// Relationship extracts the named column as a relationship record.
func (r Record) Relationship(key string) (*RelationshipRecord, bool) {
	rel, ok := r[key].(*RelationshipRecord)
	return rel, ok
}

// Result represents the fully collected result of one pattern execution.
type Result struct {
	// Keys contains the names of the columns in the result set.
	Keys []string

	// Records contains the result rows.
	Records []Record

	// Summary contains metadata about the statement execution.
	Summary Summary
}

// Summary provides write counters for one statement execution.
type Summary struct {
	NodesCreated         int
	NodesDeleted         int
	RelationshipsCreated int
	RelationshipsDeleted int
	PropertiesSet        int
}

// ClientConfig contains configuration options for graph database clients.
type ClientConfig struct {
	// URI is the connection URI for the graph database.
	// For Neo4j, use:
	//   - "bolt://host:port" for unencrypted connections
	//   - "bolt+s://host:port" for TLS encrypted connections
	//   - "neo4j://" or "neo4j+s://" for routing
	URI string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Database name to connect to.
	// Empty string uses the default database.
	Database string

	// MaxConnectionPoolSize limits the number of connections in the pool.
	// Zero or negative values use the driver default.
	MaxConnectionPoolSize int

	// ConnectionTimeout is the maximum time to wait for a connection.
	ConnectionTimeout time.Duration
}

// DefaultConfig returns a ClientConfig with sensible defaults.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		URI:                   "bolt://localhost:7687",
		Username:              "neo4j",
		Password:              "password",
		Database:              "",
		MaxConnectionPoolSize: 50,
		ConnectionTimeout:     30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c ClientConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeGraphInvalidConfig, "Password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeGraphInvalidConfig, "ConnectionTimeout must be positive")
	}
	return nil
}
