package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRenderer(calls *int) Renderer {
	return RendererFunc(func(subset RecordView, state FilterState) []ChartSpec {
		*calls++
		return []ChartSpec{NewChart(MarkBar).Title(state.String()).X("Category", Nominal).Bind(subset)}
	})
}

func TestExecuteEndToEnd(t *testing.T) {
	tbl := syntheticTable(t)
	var calls int

	res, err := Execute(tbl,
		FilterState{EqualNumber("Year", 2015), OneOf("Category", "X")},
		countRenderer(&calls),
		WithCoverage("Category"))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 25, res.Rows)
	assert.Empty(t, res.Notice)
	require.Len(t, res.Charts, 1)
	assert.Len(t, res.Charts[0].Data, 25)
	for i := 0; i < res.Subset.Len(); i++ {
		assert.Equal(t, "2015", res.Subset.Dimension(i, "Year"))
		assert.Equal(t, "X", res.Subset.Dimension(i, "Category"))
	}
}

func TestExecuteAbsentCategory(t *testing.T) {
	tbl := syntheticTable(t)
	var calls int

	res, err := Execute(tbl,
		FilterState{EqualNumber("Year", 2015), OneOf("Category", "Q")},
		countRenderer(&calls),
		WithCoverage("Category"))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Rows)
	assert.Equal(t, "No data available for Q.", res.Notice)
	require.Len(t, res.Charts, 1)
	assert.True(t, res.Charts[0].IsEmpty())
}

func TestExecutePartialCoverage(t *testing.T) {
	tbl := syntheticTable(t)
	res, err := Execute(tbl,
		FilterState{OneOf("Country", "Spain", "Chile", "Peru", "Chile")},
		nil,
		WithCoverage("Country"))
	require.NoError(t, err)
	assert.Equal(t, 20, res.Rows)
	assert.Equal(t, "No data available for Chile, Peru.", res.Notice)
	assert.Nil(t, res.Charts)
}

func TestExecuteEmptyWithoutNamedValues(t *testing.T) {
	tbl := syntheticTable(t)
	res, err := Execute(tbl,
		FilterState{EqualNumber("Year", 2015), OneOf("Country")},
		nil,
		WithCoverage("Country"))
	require.NoError(t, err)
	assert.Equal(t, EmptySubsetNotice, res.Notice)
}

func TestExecuteUnknownColumn(t *testing.T) {
	tbl := syntheticTable(t)
	var calls int
	_, err := Execute(tbl, FilterState{Equal("Sex", "F")}, countRenderer(&calls))
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Zero(t, calls)
}

func TestExecuteIsIdempotent(t *testing.T) {
	tbl := syntheticTable(t)
	state := FilterState{OneOf("Country", "Spain", "Turkey")}
	var calls int
	a, err := Execute(tbl, state, countRenderer(&calls))
	require.NoError(t, err)
	b, err := Execute(tbl, state, countRenderer(&calls))
	require.NoError(t, err)
	assert.Equal(t, a.Charts, b.Charts)
	assert.Equal(t, 100, tbl.Len())
}

func TestExecuteLogsSubset(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Execute(syntheticTable(t),
		FilterState{OneOf("Category", "Z")},
		nil,
		WithLogger(logger), WithCoverage("Category"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "filtered subset")
	assert.Contains(t, out, `filters="Category IN (Z)"`)
	assert.False(t, strings.Contains(out, "No data available"))
}

func TestMissingValues(t *testing.T) {
	tbl := syntheticTable(t)
	assert.Equal(t, []string{"Chile"}, MissingValues(tbl, "Country", []string{"Spain", "Chile", "Chile"}))
	assert.Empty(t, MissingValues(tbl, "Country", []string{"Spain"}))
	assert.Equal(t, "", MissingNotice(tbl, "Country", []string{"Spain"}))
}

func TestBuildTable(t *testing.T) {
	tbl := populationTable(t)
	table := BuildTable("Population", tbl, "Country", "Pop")

	require.Len(t, table.Columns, 2)
	assert.Equal(t, "left", table.Columns[0].Align)
	assert.Equal(t, "right", table.Columns[1].Align)
	require.NotNil(t, table.Summary)
	assert.Equal(t, "Total (5 rows)", table.Summary.Label)
	assert.Equal(t, "610", table.Summary.Values["Pop"])

	text := table.Text()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Population", lines[0])
	assert.Equal(t, "Country  Pop", lines[1])
	assert.Equal(t, "Iceland   10", lines[4])
}

func TestBuildTableEmpty(t *testing.T) {
	table := BuildTable("", NewSliceView(nil), "Country")
	assert.Nil(t, table.Summary)
	assert.Equal(t, "Country\n", table.Text())
}
