package engine

import "log/slog"

// ============================================================================
// EXECUTOR — Filter → Render for one reactive pass
// ============================================================================
// Entry point: Execute(view, state, renderer, opts...)
//
// Pipeline:
//   1. Validate the filter state against the view
//   2. Apply predicates in order → SubView
//   3. Render chart specs from the subset
//   4. Report selected categories with no rows
//
// Execute is a pure function of its inputs: the same view and state always
// produce the same charts. It never loads data and never mutates the view.
// ============================================================================

// Renderer maps a subset to the dashboard's charts. The filter state is
// passed so titles can interpolate current selections.
type Renderer interface {
	Render(subset RecordView, state FilterState) []ChartSpec
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(subset RecordView, state FilterState) []ChartSpec

func (f RendererFunc) Render(subset RecordView, state FilterState) []ChartSpec {
	return f(subset, state)
}

// Execute filters view by state and renders the result.
//
// Options:
//   - WithLogger(logger): pass diagnostics
//   - WithCoverage(column): report selected values of column with no rows
func Execute(view RecordView, state FilterState, renderer Renderer, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)

	subset, err := Apply(view, state)
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("filtered subset",
		slog.Int("rows", subset.Len()),
		slog.Int("from", view.Len()),
		slog.String("filters", state.String()))

	result := &Result{
		Subset: subset,
		Rows:   subset.Len(),
	}
	if renderer != nil {
		result.Charts = renderer.Render(subset, state)
	}
	result.Notice = coverageNotice(subset, state, cfg.coverage)
	return result, nil
}
