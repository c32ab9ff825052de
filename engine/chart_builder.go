package engine

import "slices"

// ============================================================================
// CHART BUILDER — Produces ChartSpec values from a subset
// ============================================================================
// Builder methods return modified copies, so a partially configured builder
// can be shared between passes as a template. Bind materializes the fields
// the encodings reference and yields the final immutable ChartSpec.
//
//	spec := engine.NewChart(engine.MarkBar).
//	    Title("Population Size by Country").
//	    Y("Country", engine.Nominal, engine.SortByChannel("-x")).
//	    X("Pop", engine.Quantitative, engine.Sum(), engine.Titled("Sum of population size")).
//	    Tooltip("Country", "Pop").
//	    Bind(subset)
// ============================================================================

// ChartBuilder accumulates a chart declaration.
type ChartBuilder struct {
	spec ChartSpec
}

// EncodingOption adjusts one encoding.
type EncodingOption func(*Encoding)

// Titled sets the axis or legend title.
func Titled(title string) EncodingOption {
	return func(e *Encoding) { e.Title = title }
}

// Sum pre-aggregates the field by summing within the other positional field.
func Sum() EncodingOption {
	return func(e *Encoding) { e.Aggregate = "sum" }
}

// SortBy fixes the order of the field's values.
func SortBy(order ...string) EncodingOption {
	return func(e *Encoding) { e.SortOrder = slices.Clone(order) }
}

// SortByChannel sorts the field by another channel, e.g. "-x" for descending x.
func SortByChannel(channel string) EncodingOption {
	return func(e *Encoding) { e.SortChannel = channel }
}

// WithScale attaches a scale.
func WithScale(scale Scale) EncodingOption {
	return func(e *Encoding) {
		s := scale
		s.Domain = slices.Clone(scale.Domain)
		e.Scale = &s
	}
}

// LogScale is a clamped logarithmic scale over [lo, hi].
func LogScale(lo, hi float64) EncodingOption {
	return WithScale(Scale{Type: ScaleLog, Domain: []float64{lo, hi}, Clamp: true})
}

// Legend sets the legend title.
func Legend(title string) EncodingOption {
	return func(e *Encoding) { e.Legend = title }
}

// NewChart starts a chart declaration for a mark.
func NewChart(mark Mark) ChartBuilder {
	return ChartBuilder{spec: ChartSpec{Mark: mark}}
}

// Title sets the chart title.
func (b ChartBuilder) Title(title string) ChartBuilder {
	b.spec.Title = title
	return b
}

// UseContainerWidth asks the display surface for the full available width.
func (b ChartBuilder) UseContainerWidth() ChartBuilder {
	b.spec.Width = "container"
	return b
}

func (b ChartBuilder) encode(ch Channel, field string, typ FieldType, opts []EncodingOption) ChartBuilder {
	e := Encoding{Channel: ch, Field: field, Type: typ}
	for _, opt := range opts {
		opt(&e)
	}
	encs := make([]Encoding, 0, len(b.spec.Encodings)+1)
	for _, existing := range b.spec.Encodings {
		if existing.Channel != ch {
			encs = append(encs, existing)
		}
	}
	b.spec.Encodings = append(encs, e)
	return b
}

func (b ChartBuilder) X(field string, typ FieldType, opts ...EncodingOption) ChartBuilder {
	return b.encode(ChannelX, field, typ, opts)
}

func (b ChartBuilder) Y(field string, typ FieldType, opts ...EncodingOption) ChartBuilder {
	return b.encode(ChannelY, field, typ, opts)
}

func (b ChartBuilder) Color(field string, typ FieldType, opts ...EncodingOption) ChartBuilder {
	return b.encode(ChannelColor, field, typ, opts)
}

func (b ChartBuilder) Size(field string, typ FieldType, opts ...EncodingOption) ChartBuilder {
	return b.encode(ChannelSize, field, typ, opts)
}

func (b ChartBuilder) Theta(field string, typ FieldType, opts ...EncodingOption) ChartBuilder {
	return b.encode(ChannelTheta, field, typ, opts)
}

// Tooltip lists the fields shown on hover.
func (b ChartBuilder) Tooltip(fields ...string) ChartBuilder {
	tips := make([]Tooltip, len(fields))
	for i, f := range fields {
		tips[i] = Tooltip{Field: f}
	}
	b.spec.Tooltip = tips
	return b
}

// Bind materializes the chart's data from view and returns the finished spec.
// An empty view yields a spec with no data rows.
func (b ChartBuilder) Bind(view RecordView) ChartSpec {
	spec := b.spec
	spec.Encodings = slices.Clone(b.spec.Encodings)
	spec.Tooltip = slices.Clone(b.spec.Tooltip)

	fields, quantitative := b.fields()
	if agg, ok := b.aggregated(); ok {
		spec.Data = bindAggregated(view, agg, fields)
	} else {
		spec.Data = bindRows(view, fields, quantitative)
	}
	if spec.Data == nil {
		spec.Data = []Datum{}
	}
	return spec
}

// fields lists every referenced field once, in encoding then tooltip order.
func (b ChartBuilder) fields() ([]string, map[string]bool) {
	var fields []string
	quantitative := make(map[string]bool)
	seen := make(map[string]bool)
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	for _, e := range b.spec.Encodings {
		add(e.Field)
		if e.Type == Quantitative {
			quantitative[e.Field] = true
		}
	}
	for _, t := range b.spec.Tooltip {
		add(t.Field)
	}
	return fields, quantitative
}

type aggregation struct {
	measure string
	groupBy string
}

// aggregated finds a summed encoding and the categorical field it groups by.
func (b ChartBuilder) aggregated() (aggregation, bool) {
	for _, e := range b.spec.Encodings {
		if e.Aggregate == "" {
			continue
		}
		for _, other := range b.spec.Encodings {
			if other.Field != e.Field && other.Type != Quantitative {
				return aggregation{measure: e.Field, groupBy: other.Field}, true
			}
		}
	}
	return aggregation{}, false
}

func bindRows(view RecordView, fields []string, quantitative map[string]bool) []Datum {
	data := make([]Datum, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		d := make(Datum, len(fields))
		for _, f := range fields {
			if quantitative[f] {
				if view.Dimension(i, f) == "" {
					d[f] = nil
				} else {
					d[f] = view.Measure(i, f)
				}
				continue
			}
			d[f] = view.Dimension(i, f)
		}
		data = append(data, d)
	}
	return data
}

func bindAggregated(view RecordView, agg aggregation, fields []string) []Datum {
	groups := GroupAndAggregate(view, agg.groupBy, agg.measure, "", 0)
	data := make([]Datum, 0, len(groups))
	for _, g := range groups {
		d := Datum{agg.groupBy: g.Key, agg.measure: g.Value}
		for _, f := range fields {
			if _, set := d[f]; !set {
				// ungrouped tooltip fields take the group's first row
				d[f] = g.View.Dimension(0, f)
			}
		}
		data = append(data, d)
	}
	return data
}
