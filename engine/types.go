package engine

// ============================================================================
// ENGINE TYPES — Filter → Chart pipeline values
// ============================================================================
// Everything here is a plain value. A ChartSpec is built once per reactive
// pass, handed to a display surface, and never mutated afterwards.
// ============================================================================

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
// Used by SliceView for ad-hoc data and tests.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// GROUP — Intermediate aggregation result
// ============================================================================

// Group represents a grouped/aggregated result.
type Group struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Value float64    `json:"value"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // rows of this group (zero-copy)
}

// ============================================================================
// CHART SPEC — Declarative visualization
// ============================================================================

// Mark is the visual mark a chart draws.
type Mark string

const (
	MarkRect  Mark = "rect" // heatmap cells
	MarkBar   Mark = "bar"
	MarkArc   Mark = "arc"   // pie / donut
	MarkPoint Mark = "point" // bubble when size is encoded
)

// Channel is a visual channel a field binds to.
type Channel string

const (
	ChannelX     Channel = "x"
	ChannelY     Channel = "y"
	ChannelColor Channel = "color"
	ChannelSize  Channel = "size"
	ChannelTheta Channel = "theta"
)

// FieldType is the measurement type of an encoded field.
type FieldType string

const (
	Nominal      FieldType = "nominal"
	Ordinal      FieldType = "ordinal"
	Quantitative FieldType = "quantitative"
)

// ScaleType is the transform a scale applies.
type ScaleType string

const (
	ScaleLinear ScaleType = "linear"
	ScaleLog    ScaleType = "log"
)

// Scale describes how data values map onto a channel.
type Scale struct {
	Type   ScaleType `json:"type" msgpack:"type"`
	Domain []float64 `json:"domain,omitempty" msgpack:"domain,omitempty"`
	Clamp  bool      `json:"clamp,omitempty" msgpack:"clamp,omitempty"`
}

// Encoding binds a field to a channel.
type Encoding struct {
	Channel   Channel   `json:"channel" msgpack:"channel"`
	Field     string    `json:"field" msgpack:"field"`
	Type      FieldType `json:"type" msgpack:"type"`
	Title     string    `json:"title,omitempty" msgpack:"title,omitempty"`
	Aggregate string    `json:"aggregate,omitempty" msgpack:"aggregate,omitempty"` // "sum"
	// Sort is either an explicit value order or a channel sort such as "-x".
	SortOrder   []string `json:"sortOrder,omitempty" msgpack:"sortOrder,omitempty"`
	SortChannel string   `json:"sortChannel,omitempty" msgpack:"sortChannel,omitempty"`
	Scale       *Scale   `json:"scale,omitempty" msgpack:"scale,omitempty"`
	Legend      string   `json:"legend,omitempty" msgpack:"legend,omitempty"`
}

// Tooltip names a field shown on hover.
type Tooltip struct {
	Field string    `json:"field" msgpack:"field"`
	Type  FieldType `json:"type,omitempty" msgpack:"type,omitempty"`
}

// Datum is one materialized data row of a chart.
type Datum map[string]any

// ChartSpec is an immutable declarative chart bound to a subset.
type ChartSpec struct {
	Mark      Mark       `json:"mark" msgpack:"mark"`
	Title     string     `json:"title" msgpack:"title"`
	Encodings []Encoding `json:"encodings" msgpack:"encodings"`
	Tooltip   []Tooltip  `json:"tooltip,omitempty" msgpack:"tooltip,omitempty"`
	Data      []Datum    `json:"data" msgpack:"data"`
	// Width is a sizing hint for the display surface: "container" uses the
	// full available width.
	Width string `json:"width,omitempty" msgpack:"width,omitempty"`
}

// Encoding returns the encoding for a channel, if any.
func (c ChartSpec) Encoding(ch Channel) (Encoding, bool) {
	for _, e := range c.Encodings {
		if e.Channel == ch {
			return e, true
		}
	}
	return Encoding{}, false
}

// IsEmpty reports whether the chart has no marks to draw.
func (c ChartSpec) IsEmpty() bool { return len(c.Data) == 0 }

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData is a text-renderable table of a subset.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// ============================================================================
// RESULT — Output of one filter → render run
// ============================================================================

// Result is the render-ready output of Execute.
type Result struct {
	Subset RecordView  `json:"-"`
	Rows   int         `json:"rows"`
	Charts []ChartSpec `json:"charts"`
	// Notice is a user-visible message about selections that produced no
	// rows. Empty when everything selected is present.
	Notice string `json:"notice,omitempty"`
}
