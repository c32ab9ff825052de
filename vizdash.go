// Package vizdash serves memoized, filterable dashboards.
//
// Usage:
//
//	import "github.com/spektr-org/vizdash"
//
//	reg := vizdash.Open(cfg, vizdash.WithLogger(logger))
//	p, err := reg.Get("cancer")
//	state, err := p.State(ctx, dashboard.Selection{"Year": {"2010"}})
//	pass, err := p.Run(ctx, state)
//
// Each dashboard loads its dataset once per process, keyed on its sources.
// Every selection change reruns the filter pipeline over the cached table and
// returns declarative chart specifications; drawing them is the host's job.
package vizdash

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spektr-org/vizdash/config"
	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/dashboards/cancer"
	"github.com/spektr-org/vizdash/dashboards/survey"
	"github.com/spektr-org/vizdash/metrics"
	"github.com/spektr-org/vizdash/source"
)

// Registry holds one pipeline per dashboard over a shared fetcher.
type Registry struct {
	pipelines map[string]*dashboard.Pipeline
}

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	fetcher *source.Fetcher
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger handed to every pipeline and the fetcher.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records loads and passes of every dashboard.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithFetcher replaces the fetcher built from cfg.HTTP.
func WithFetcher(f *source.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// Open registers the cancer and survey dashboards. Nothing is loaded until a
// pipeline is first used.
func Open(cfg config.Config, opts ...Option) *Registry {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fetcher == nil {
		o.fetcher = source.NewFetcher(
			source.WithTimeout(cfg.HTTP.Timeout),
			source.WithLogger(o.logger))
	}
	popts := []dashboard.Option{dashboard.WithLogger(o.logger), dashboard.WithMetrics(o.metrics)}

	return &Registry{pipelines: map[string]*dashboard.Pipeline{
		cancer.Name: dashboard.New(cancer.Definition(cfg.Cancer, o.fetcher), popts...),
		survey.Name: dashboard.New(survey.Definition(cfg.Survey, o.fetcher), popts...),
	}}
}

// Names lists the registered dashboards, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pipelines))
	for n := range r.pipelines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named dashboard's pipeline.
func (r *Registry) Get(name string) (*dashboard.Pipeline, error) {
	p, ok := r.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("unknown dashboard %q (have %v)", name, r.Names())
	}
	return p, nil
}
