// Package dashboard wires a loader, the memo cache, the filter pipeline and a
// chart renderer into one reactive pass.
//
// A host (web handler, CLI, test) calls Run once per widget change. Only the
// memoized table survives between passes; everything Run returns belongs to
// that pass.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spektr-org/vizdash/engine"
	"github.com/spektr-org/vizdash/frame"
	"github.com/spektr-org/vizdash/memo"
	"github.com/spektr-org/vizdash/metrics"
)

var tracer = otel.Tracer("github.com/spektr-org/vizdash/dashboard")

// Definition is everything that makes one dashboard.
type Definition struct {
	// Name identifies the dashboard in logs and metrics.
	Name string
	// Key is the memo key: the loader's identity plus its constant arguments.
	Key string
	// Load builds the tidy table.
	Load memo.Loader[*frame.Table]
	// Render maps a subset to charts.
	Render engine.Renderer
	// Coverage lists multiselect columns whose unmatched selections are
	// reported in the notice.
	Coverage []string
	// Notice replaces the default coverage notice when set.
	Notice func(subset engine.RecordView, state engine.FilterState) string
	// Widgets describes the selection controls for a loaded table.
	Widgets func(tbl *frame.Table) []Widget
}

// Pass is the output of one reactive pass.
type Pass struct {
	ID        uuid.UUID          `json:"id" msgpack:"id"`
	Dashboard string             `json:"dashboard" msgpack:"dashboard"`
	Filters   string             `json:"filters" msgpack:"filters"`
	Subset    engine.RecordView  `json:"-" msgpack:"-"`
	Rows      int                `json:"rows" msgpack:"rows"`
	Charts    []engine.ChartSpec `json:"charts" msgpack:"charts"`
	Notice    string             `json:"notice,omitempty" msgpack:"notice,omitempty"`
	Duration  time.Duration      `json:"duration" msgpack:"duration"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for passes and loads.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records loads and passes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCache supplies the memo cache, for hosts that build several
// pipelines over one loaded table.
func WithCache(c *memo.Cache[*frame.Table]) Option {
	return func(p *Pipeline) { p.cache = c }
}

// Pipeline runs reactive passes for one dashboard.
type Pipeline struct {
	def     Definition
	cache   *memo.Cache[*frame.Table]
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New builds a pipeline. The table is not loaded until the first pass.
func New(def Definition, opts ...Option) *Pipeline {
	p := &Pipeline{def: def, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("dashboard", def.Name))
	if p.cache == nil {
		key := def.Key
		if key == "" {
			key = def.Name
		}
		p.cache = memo.New(key, def.Load,
			memo.WithLogger(p.logger),
			memo.WithMetrics(p.metrics, def.Name))
	}
	return p
}

// Name returns the dashboard name.
func (p *Pipeline) Name() string { return p.def.Name }

// Cache returns the pipeline's memo cache.
func (p *Pipeline) Cache() *memo.Cache[*frame.Table] { return p.cache }

// Table returns the memoized tidy table, loading it on first use.
func (p *Pipeline) Table(ctx context.Context) (*frame.Table, error) {
	tbl, err := p.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: load: %w", p.def.Name, err)
	}
	return tbl, nil
}

// Widgets returns the selection controls for the loaded table.
func (p *Pipeline) Widgets(ctx context.Context) ([]Widget, error) {
	tbl, err := p.Table(ctx)
	if err != nil {
		return nil, err
	}
	if p.def.Widgets == nil {
		return nil, nil
	}
	return p.def.Widgets(tbl), nil
}

// State translates a host selection into the dashboard's filter state.
func (p *Pipeline) State(ctx context.Context, sel Selection) (engine.FilterState, error) {
	widgets, err := p.Widgets(ctx)
	if err != nil {
		return nil, err
	}
	return StateFrom(widgets, sel)
}

// Run executes one reactive pass: load (memoized), filter, render, notice.
func (p *Pipeline) Run(ctx context.Context, state engine.FilterState) (*Pass, error) {
	id := uuid.New()
	ctx, span := tracer.Start(ctx, "dashboard.pass", trace.WithAttributes(
		attribute.String("dashboard", p.def.Name),
		attribute.String("pass.id", id.String()),
	))
	defer span.End()

	start := time.Now()
	pass, err := p.run(ctx, id, state)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.ObservePass(p.def.Name, elapsed, 0, false, err)
		return nil, err
	}
	pass.Duration = elapsed
	span.SetAttributes(attribute.Int("pass.rows", pass.Rows))
	p.metrics.ObservePass(p.def.Name, elapsed, pass.Rows, pass.Notice != "", nil)
	return pass, nil
}

func (p *Pipeline) run(ctx context.Context, id uuid.UUID, state engine.FilterState) (*Pass, error) {
	tbl, err := p.Table(ctx)
	if err != nil {
		return nil, err
	}

	logger := p.logger.With(slog.String("pass", id.String()))
	opts := []engine.Option{engine.WithLogger(logger)}
	for _, col := range p.def.Coverage {
		opts = append(opts, engine.WithCoverage(col))
	}

	res, err := engine.Execute(tbl, state, p.def.Render, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.def.Name, err)
	}
	if p.def.Notice != nil {
		res.Notice = p.def.Notice(res.Subset, state)
	}
	if res.Notice != "" {
		logger.Info("selection not fully covered", slog.String("notice", res.Notice))
	}

	logger.Debug("pass complete",
		slog.Int("rows", res.Rows),
		slog.Int("charts", len(res.Charts)))

	return &Pass{
		ID:        id,
		Dashboard: p.def.Name,
		Filters:   state.String(),
		Subset:    res.Subset,
		Rows:      res.Rows,
		Charts:    res.Charts,
		Notice:    res.Notice,
	}, nil
}
