package graph

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/TwigSlot/twig-server/internal/types"
)

// Neo4jClient implements Client for Neo4j graph databases.
// It provides connection pooling and health monitoring.
type Neo4jClient struct {
	config  ClientConfig
	driver  neo4j.DriverWithContext
	metrics *Metrics
}

// Neo4jClientOption is a functional option for configuring Neo4jClient.
type Neo4jClientOption func(*Neo4jClient)

// WithMetrics attaches a Metrics instance so every session run is counted
// and timed.
func WithMetrics(m *Metrics) Neo4jClientOption {
	return func(c *Neo4jClient) {
		c.metrics = m
	}
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config ClientConfig, opts ...Neo4jClientOption) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Neo4jClient{config: config}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect establishes a connection to the Neo4j database.
// Uses exponential backoff for connection retries.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		config.ConnectionAcquisitionTimeout = c.config.ConnectionTimeout
		// Encryption is controlled by the URI scheme (bolt:// vs bolt+s://).
	}

	var driver neo4j.DriverWithContext
	var lastErr error
	maxRetries := 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		var err error
		driver, err = neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.driver = driver
				return nil
			}
		}

		lastErr = err

		if ctx.Err() != nil {
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}

		// baseDelay * 2^attempt, capped at the configured timeout
		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionTimeout {
			delay = c.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return types.WrapError(ErrCodeGraphConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
	}

	return types.WrapError(ErrCodeGraphConnectionFailed,
		fmt.Sprintf("failed to connect after %d attempts", maxRetries), lastErr)
}

// Close releases all resources and closes the database connection.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}

	if err := c.driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeGraphConnectionClosed,
			"failed to close driver", err)
	}

	c.driver = nil
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}

	return types.Healthy("connected to Neo4j")
}

// Session opens a new Neo4j session. Callers own the returned session and
// must Close it when their unit of work is done.
func (c *Neo4jClient) Session(ctx context.Context) Session {
	sess := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
	})
	return &neo4jSession{sess: sess, metrics: c.metrics}
}

// neo4jSession implements Session over a driver session. Statements run in
// auto-commit mode, one round trip each; results are collected eagerly so the
// round trip is finished before the caller inspects records.
type neo4jSession struct {
	sess    neo4j.SessionWithContext
	metrics *Metrics
}

func (s *neo4jSession) Run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	start := time.Now()

	res, err := s.run(ctx, cypher, params)

	if s.metrics != nil {
		s.metrics.ObserveQuery(time.Since(start), err)
	}
	return res, err
}

func (s *neo4jSession) run(ctx context.Context, cypher string, params map[string]any) (*Result, error) {
	neoResult, err := s.sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphQueryFailed, "statement execution failed", err)
	}

	records, err := neoResult.Collect(ctx)
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphQueryFailed, "result collection failed", err)
	}

	summary, err := neoResult.Consume(ctx)
	if err != nil {
		return nil, types.WrapError(ErrCodeGraphQueryFailed, "result consumption failed", err)
	}

	result := &Result{
		Records: make([]Record, 0, len(records)),
	}
	if len(records) > 0 {
		result.Keys = records[0].Keys
	}

	for _, record := range records {
		row := make(Record, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = convertValue(record.Values[i])
		}
		result.Records = append(result.Records, row)
	}

	if summary != nil && summary.Counters() != nil {
		counters := summary.Counters()
		result.Summary = Summary{
			NodesCreated:         counters.NodesCreated(),
			NodesDeleted:         counters.NodesDeleted(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			RelationshipsDeleted: counters.RelationshipsDeleted(),
			PropertiesSet:        counters.PropertiesSet(),
		}
	}

	return result, nil
}

func (s *neo4jSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}
