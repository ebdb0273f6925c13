package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/metrics"

	"github.com/b2b-portal/opscenter/services/command-center/internal/domain"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewClient connects and pings Redis
func NewClient(ctx context.Context, cfg *Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// SnapshotCache keeps recently built snapshots as JSON under a key prefix
type SnapshotCache struct {
	client  redis.UniversalClient
	prefix  string
	metrics *metrics.Metrics
	logger  *logging.Logger
}

// NewSnapshotCache creates a new SnapshotCache
func NewSnapshotCache(client redis.UniversalClient, m *metrics.Metrics, logger *logging.Logger) *SnapshotCache {
	return &SnapshotCache{
		client:  client,
		prefix:  "opscenter:snapshot:",
		metrics: m,
		logger:  logger,
	}
}

func (c *SnapshotCache) key(queryKey string) string {
	return c.prefix + queryKey
}

// Get returns the cached snapshot for a normalized query key
func (c *SnapshotCache) Get(ctx context.Context, queryKey string) (*domain.CommandCenterSnapshot, bool, error) {
	start := time.Now()
	data, err := c.client.Get(ctx, c.key(queryKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record(ctx, "get", start, nil)
		return nil, false, nil
	}
	c.record(ctx, "get", start, err)
	if err != nil {
		return nil, false, err
	}

	var snapshot domain.CommandCenterSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, false, fmt.Errorf("corrupt cached snapshot: %w", err)
	}
	return &snapshot, true, nil
}

// Set stores a snapshot for ttl
func (c *SnapshotCache) Set(ctx context.Context, queryKey string, snapshot *domain.CommandCenterSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.client.Set(ctx, c.key(queryKey), data, ttl).Err()
	c.record(ctx, "set", start, err)
	return err
}

// Ping checks connectivity, used by the readiness probe
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SnapshotCache) record(ctx context.Context, op string, start time.Time, err error) {
	duration := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordSourceRead("redis.snapshot", op, err == nil, duration)
	}
	if c.logger != nil {
		c.logger.SourceRead(ctx, "redis.snapshot", op, duration, err, -1)
	}
}
