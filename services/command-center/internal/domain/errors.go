package domain

import "errors"

// Sentinel errors. Messages are matched by errors.MapDomainError.
var (
	ErrSourceUnavailable     = errors.New("source unavailable")
	ErrConfigurationMissing  = errors.New("included warehouses not configured")
	ErrInvalidFilter         = errors.New("invalid filter")
	ErrTimeout               = errors.New("engine timeout")
	ErrDependencyUnavailable = errors.New("upstream section unavailable")
	ErrAllSectionsDegraded   = errors.New("source unavailable: every section degraded")
)
