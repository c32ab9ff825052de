package engine

import "log/slog"

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	logger *slog.Logger
	// coverage columns: selected values missing from the subset are reported
	coverage []string
}

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCoverage reports selected values of column that have no rows in the
// subset. The column must be driven by a OneOf predicate.
func WithCoverage(column string) Option {
	return func(c *config) {
		c.coverage = append(c.coverage, column)
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
