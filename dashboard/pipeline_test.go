package dashboard

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/vizdash/engine"
	"github.com/spektr-org/vizdash/frame"
	"github.com/spektr-org/vizdash/metrics"
)

// synthetic builds 100 rows across categories X and Y and years 2015, 2016.
func synthetic() *frame.Table {
	tbl := frame.MustNew("Year", "Category", "Value")
	for i := 0; i < 100; i++ {
		cat := "X"
		if i%4 >= 2 {
			cat = "Y"
		}
		_ = tbl.Append(frame.Num(float64(2015+i%2)), frame.Str(cat), frame.Num(float64(i)))
	}
	return tbl
}

type fixture struct {
	loads int
	err   error
}

func (f *fixture) definition() Definition {
	return Definition{
		Name: "synthetic",
		Key:  "synthetic|v1",
		Load: func(context.Context) (*frame.Table, error) {
			f.loads++
			if f.err != nil {
				return nil, f.err
			}
			return synthetic(), nil
		},
		Render: engine.RendererFunc(func(subset engine.RecordView, state engine.FilterState) []engine.ChartSpec {
			return []engine.ChartSpec{
				engine.NewChart(engine.MarkBar).
					Title("Value by category").
					Y("Category", engine.Nominal).
					X("Value", engine.Quantitative, engine.Sum()).
					Bind(subset),
			}
		}),
		Coverage: []string{"Category"},
		Widgets: func(tbl *frame.Table) []Widget {
			return []Widget{
				YearSlider(tbl, "Select a Year", "Year"),
				Multi(tbl, "Select Categories", "Category", []string{"X"}),
			}
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	f := &fixture{}
	p := New(f.definition())
	ctx := context.Background()

	pass, err := p.Run(ctx, engine.FilterState{
		engine.EqualNumber("Year", 2015),
		engine.OneOf("Category", "X"),
	})
	require.NoError(t, err)

	assert.Equal(t, 25, pass.Rows)
	for i := 0; i < pass.Subset.Len(); i++ {
		assert.Equal(t, "2015", pass.Subset.Dimension(i, "Year"))
		assert.Equal(t, "X", pass.Subset.Dimension(i, "Category"))
	}
	assert.Empty(t, pass.Notice)
	require.Len(t, pass.Charts, 1)
	require.Len(t, pass.Charts[0].Data, 1)
	assert.Equal(t, "X", pass.Charts[0].Data[0]["Category"])
	assert.NotEqual(t, pass.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "synthetic", pass.Dashboard)

	absent, err := p.Run(ctx, engine.FilterState{
		engine.EqualNumber("Year", 2015),
		engine.OneOf("Category", "Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, absent.Rows)
	assert.Equal(t, "No data available for Z.", absent.Notice)
	assert.True(t, absent.Charts[0].IsEmpty())
	assert.NotEqual(t, pass.ID, absent.ID)

	assert.Equal(t, 1, f.loads)
}

func TestRunLoadsOncePerPipeline(t *testing.T) {
	f := &fixture{}
	p := New(f.definition())
	for year := 2015; year <= 2016; year++ {
		for i := 0; i < 10; i++ {
			_, err := p.Run(context.Background(), engine.FilterState{engine.EqualNumber("Year", float64(year))})
			require.NoError(t, err)
		}
	}
	_, err := p.Widgets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.loads)
	assert.Equal(t, 1, p.Cache().Loads())
}

func TestRunLoadFailure(t *testing.T) {
	boom := errors.New("unreachable")
	f := &fixture{err: boom}
	p := New(f.definition())

	_, err := p.Run(context.Background(), nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "synthetic: load")

	f.err = nil
	pass, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 100, pass.Rows)
	assert.Equal(t, 2, f.loads)
}

func TestRunUnknownColumn(t *testing.T) {
	p := New((&fixture{}).definition())
	_, err := p.Run(context.Background(), engine.FilterState{engine.Equal("Sex", "M")})
	require.ErrorIs(t, err, engine.ErrUnknownColumn)
}

func TestNoticeOverride(t *testing.T) {
	def := (&fixture{}).definition()
	def.Notice = func(subset engine.RecordView, _ engine.FilterState) string {
		if subset.Len() == 0 {
			return "nothing"
		}
		return ""
	}
	pass, err := New(def).Run(context.Background(), engine.FilterState{engine.OneOf("Category", "Z")})
	require.NoError(t, err)
	assert.Equal(t, "nothing", pass.Notice)
}

func TestStateFromWidgets(t *testing.T) {
	p := New((&fixture{}).definition())
	ctx := context.Background()

	widgets, err := p.Widgets(ctx)
	require.NoError(t, err)
	require.Len(t, widgets, 2)
	assert.Equal(t, 2015.0, widgets[0].Min)
	assert.Equal(t, 2016.0, widgets[0].Max)
	assert.Equal(t, []string{"X", "Y"}, widgets[1].Options)

	state, err := p.State(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, `Year = "2015" AND Category IN (X)`, state.String())

	state, err = p.State(ctx, Selection{"Year": {"2016"}, "Category": {"X", "Y"}})
	require.NoError(t, err)
	pass, err := p.Run(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 50, pass.Rows)

	_, err = p.State(ctx, Selection{"Cancer": {"Lung"}})
	require.ErrorIs(t, err, engine.ErrUnknownColumn)

	_, err = p.State(ctx, Selection{"Year": {"2015", "2016"}})
	require.Error(t, err)
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection([]string{"Year=2015", "Country=Spain, Chile", "Country=Peru", "Sex="})
	require.NoError(t, err)
	assert.Equal(t, Selection{
		"Year":    {"2015"},
		"Country": {"Spain", "Chile", "Peru"},
		"Sex":     {},
	}, sel)

	_, err = ParseSelection([]string{"2015"})
	require.Error(t, err)
}

func TestWidgetPredicates(t *testing.T) {
	tests := []struct {
		w      Widget
		values []string
		want   string
	}{
		{Widget{Column: "Year", Kind: Slider}, []string{"2015"}, `Year = "2015"`},
		{Widget{Column: "Year", Kind: RangeSlider}, []string{"2016", "2014"}, "Year BETWEEN 2014 AND 2016"},
		{Widget{Column: "Sex", Kind: Radio}, []string{"F"}, `Sex = "F"`},
		{Widget{Column: "Cancer", Kind: SelectBox}, []string{"Lung"}, `Cancer = "Lung"`},
		{Widget{Column: "Country", Kind: MultiSelect}, nil, "Country IN ()"},
	}
	for _, tc := range tests {
		p, err := tc.w.predicate(tc.values)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.String())
	}

	_, err := Widget{Label: "Year", Kind: Slider}.predicate([]string{"soon"})
	require.Error(t, err)
	_, err = Widget{Label: "Sex", Kind: Radio}.predicate(nil)
	require.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := New((&fixture{}).definition(), WithMetrics(metrics.New(reg)))

	for i := 0; i < 3; i++ {
		_, err := p.Run(context.Background(), engine.FilterState{engine.OneOf("Category", "X", "Q")})
		require.NoError(t, err)
	}

	n, err := testutil.GatherAndCount(reg, "vizdash_passes_total", "vizdash_notices_total", "vizdash_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRunLogsOverriddenNotice(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	f := &fixture{}
	def := f.definition()
	def.Notice = func(subset engine.RecordView, state engine.FilterState) string {
		return "custom notice"
	}
	p := New(def, WithLogger(logger))

	pass, err := p.Run(context.Background(), engine.FilterState{engine.OneOf("Category", "Z")})
	require.NoError(t, err)
	assert.Equal(t, "custom notice", pass.Notice)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "selection not fully covered"))
	assert.Contains(t, out, `notice="custom notice"`)
	assert.NotContains(t, out, "No data available for Z.")
}
