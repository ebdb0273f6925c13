package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/metrics"
)

// Config holds the graph database connection configuration
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Client wraps the driver for read-only queries
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewClient creates a driver and verifies connectivity
func NewClient(ctx context.Context, config Config, m *metrics.Metrics, logger *logging.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(config.URI, neo4j.BasicAuth(config.Username, config.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	return &Client{
		driver:   driver,
		database: config.Database,
		metrics:  m,
		logger:   logger,
	}, nil
}

// Read runs a query against a reader replica and returns all records
func (c *Client) Read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	start := time.Now()
	result, err := neo4j.ExecuteQuery(
		ctx,
		c.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	duration := time.Since(start)

	rows := 0
	if err == nil {
		rows = len(result.Records)
	}
	if c.metrics != nil {
		c.metrics.RecordSourceRead("neo4j", "read", err == nil, duration)
	}
	if c.logger != nil {
		c.logger.SourceRead(ctx, "neo4j", "read", duration, err, rows)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to execute read query: %w", err)
	}
	return result.Records, nil
}

// Health runs a trivial query
func (c *Client) Health(ctx context.Context) error {
	_, err := neo4j.ExecuteQuery(
		ctx,
		c.driver,
		"RETURN 1",
		nil,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close closes the driver
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
