package resilience

import "time"

// Circuit breaker defaults for backing store reads
const (
	DefaultMaxRequests           uint32        = 2
	DefaultInterval              time.Duration = 60 * time.Second
	DefaultTimeout               time.Duration = 15 * time.Second
	DefaultFailureThreshold      uint32        = 5
	DefaultFailureRatioThreshold float64       = 0.6
	DefaultMinRequestsToTrip     uint32        = 10
)

// Retry defaults. Reads sit inside a request deadline of a few seconds, so
// the budget is one quick retry.
const (
	DefaultRetryMaxAttempts   int           = 2
	DefaultRetryInitialDelay  time.Duration = 50 * time.Millisecond
	DefaultRetryMaxDelay      time.Duration = 250 * time.Millisecond
	DefaultRetryBackoffFactor float64       = 2.0
)
