// Package guarded wraps the backing store sources with a per-store circuit
// breaker and a short retry budget.
package guarded

import (
	"context"

	"github.com/b2b-portal/opscenter/shared/pkg/resilience"
)

// Breaker names, one per backing store read path
const (
	BreakerOrders       = "postgres.orders"
	BreakerInventory    = "postgres.inventory"
	BreakerCustomers    = "postgres.customers"
	BreakerCarts        = "postgres.carts"
	BreakerCatalog      = "postgres.catalog"
	BreakerDataQuality  = "postgres.data_quality"
	BreakerPicking      = "mongodb.picking"
	BreakerCoOccurrence = "neo4j.co_occurrence"
)

// Guard runs reads through a circuit breaker with retry
type Guard struct {
	breaker *resilience.CircuitBreaker
	retry   *resilience.RetryConfig
}

// NewGuard creates a Guard. A nil retry config disables retries.
func NewGuard(breaker *resilience.CircuitBreaker, retry *resilience.RetryConfig) *Guard {
	if retry == nil {
		retry = &resilience.RetryConfig{MaxAttempts: 1}
	}
	return &Guard{breaker: breaker, retry: retry}
}

// FromRegistry returns a Guard using the named breaker of the registry and
// the default retry policy
func FromRegistry(registry *resilience.CircuitBreakerRegistry, name string) *Guard {
	return NewGuard(registry.Get(name), resilience.DefaultRetryConfig())
}

// Every attempt passes the breaker so that failures during retries count
// toward tripping it. An open circuit is not retried.
func run[T any](ctx context.Context, g *Guard, fn func() (T, error)) (T, error) {
	return resilience.RetryWithResult(ctx, g.retry, func() (T, error) {
		return resilience.Call(ctx, g.breaker, fn)
	})
}
