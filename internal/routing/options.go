package routing

import (
	"time"

	"railnet.dev/railnet/internal/models"
)

const (
	DefaultMaxChanges    = 3
	DefaultMaxRoutes     = 3
	DefaultTimeout       = 10 * time.Second
	DefaultMaxIterations = 10000

	// Via suggestion budget.
	viaMaxRoutes  = 5
	viaMaxChanges = 2
)

// Options bounds a route search.
type Options struct {
	MaxChanges    int
	MaxRoutes     int
	MaxPathLength int
	Timeout       time.Duration
	MaxIterations int
}

// DefaultOptions returns the standard search limits.
func DefaultOptions() Options {
	return Options{
		MaxChanges:    DefaultMaxChanges,
		MaxRoutes:     DefaultMaxRoutes,
		MaxPathLength: models.MaxPathLength,
		Timeout:       DefaultTimeout,
		MaxIterations: DefaultMaxIterations,
	}
}

// withDefaults fills unset limits. MaxChanges of zero is meaningful and is
// kept; only negative values fall back.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxChanges < 0 {
		o.MaxChanges = d.MaxChanges
	}
	if o.MaxRoutes <= 0 {
		o.MaxRoutes = d.MaxRoutes
	}
	if o.MaxPathLength <= 0 || o.MaxPathLength > models.MaxPathLength {
		o.MaxPathLength = d.MaxPathLength
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	return o
}
