package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/frame"
)

func sampleTable(t *testing.T) *frame.Table {
	t.Helper()
	tbl := frame.MustNew("Year", "Sex", "Country", "AgeCode", "Deaths", "Rate", "Id", "Notes")
	countries := []string{"Austria", "Spain", "Thailand", "Turkey", "Iceland"}
	sexes := []string{"M", "F"}
	for i := 0; i < 20; i++ {
		require.NoError(t, tbl.Append(
			frame.Num(float64(2015+i%2)),
			frame.Str(sexes[i%2]),
			frame.Str(countries[i%5]),
			frame.Num(float64(i%4+1)),
			frame.Num(float64(i*7)),
			frame.Num(float64(i)*0.5),
			frame.Str(fmt.Sprintf("id-%02d", i)),
			frame.Null(),
		))
	}
	return tbl
}

func TestDescribeRoles(t *testing.T) {
	p := Describe("test", sampleTable(t))
	assert.Equal(t, "test", p.Dashboard)
	assert.Equal(t, 20, p.Rows)
	require.Len(t, p.Columns, 8)

	roles := make(map[string]Role)
	widgets := make(map[string]dashboard.WidgetKind)
	for _, c := range p.Columns {
		roles[c.Name] = c.Role
		widgets[c.Name] = c.Widget
	}
	assert.Equal(t, map[string]Role{
		"Year":    RoleDimension,
		"Sex":     RoleDimension,
		"Country": RoleDimension,
		"AgeCode": RoleDimension,
		"Deaths":  RoleMeasure,
		"Rate":    RoleMeasure,
		"Id":      RoleIdentifier,
		"Notes":   RoleEmpty,
	}, roles)
	assert.Equal(t, map[string]dashboard.WidgetKind{
		"Year":    dashboard.Slider,
		"Sex":     dashboard.Radio,
		"Country": dashboard.MultiSelect,
		"AgeCode": dashboard.MultiSelect,
		"Deaths":  "",
		"Rate":    "",
		"Id":      "",
		"Notes":   "",
	}, widgets)

	assert.Equal(t, []string{"Year", "Sex", "Country", "AgeCode"}, p.Dimensions())
	assert.Equal(t, []string{"Deaths", "Rate"}, p.Measures())
}

func TestDescribeStats(t *testing.T) {
	p := Describe("test", sampleTable(t))

	year, ok := p.Column("Year")
	require.True(t, ok)
	assert.True(t, year.IsTemporal)
	assert.Equal(t, 2015.0, year.Min)
	assert.Equal(t, 2016.0, year.Max)
	assert.Equal(t, []string{"2015", "2016"}, year.Samples)
	assert.Equal(t, "low", year.CardinalityHint)

	deaths, _ := p.Column("Deaths")
	assert.Equal(t, 133.0, deaths.Max)
	assert.Equal(t, "medium", deaths.CardinalityHint)
	assert.Len(t, deaths.Samples, maxSamples)

	notes, _ := p.Column("Notes")
	assert.Equal(t, 20, notes.Nulls)
	assert.Equal(t, "null", notes.Kind)
	assert.Zero(t, notes.Max)

	_, ok = p.Column("Planet")
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Agegrp", toDisplayName("AGEGRP"))
	assert.Equal(t, "Order By", toDisplayName("order_by"))
	assert.Equal(t, "Race White", toDisplayName("RACE_WHITE"))
}

func TestYearRangeIsTemporal(t *testing.T) {
	tbl := frame.MustNew("Period", "Count")
	for i := 0; i < 30; i++ {
		require.NoError(t, tbl.Append(frame.Num(float64(1990+i)), frame.Num(float64(i))))
	}
	c, ok := Describe("t", tbl).Column("Period")
	require.True(t, ok)
	assert.True(t, c.IsTemporal)
	assert.Equal(t, RoleDimension, c.Role)
	assert.Equal(t, dashboard.Slider, c.Widget)
}
