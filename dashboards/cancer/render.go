package cancer

import (
	"fmt"

	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/engine"
	"github.com/spektr-org/vizdash/frame"
)

const (
	rateTitle = "Mortality rate per 100k"
	popTitle  = "Population Size by Country"
)

// Widgets declares the selection controls in filter order: year, sex,
// countries, cancer type.
func Widgets(defaultCountries []string) func(*frame.Table) []dashboard.Widget {
	return func(tbl *frame.Table) []dashboard.Widget {
		return []dashboard.Widget{
			dashboard.YearSlider(tbl, "Select a Year", "Year"),
			dashboard.Choice(tbl, dashboard.Radio, "Select Sex", "Sex"),
			dashboard.Multi(tbl, "Select Countries", "Country", defaultCountries),
			dashboard.Choice(tbl, dashboard.SelectBox, "Select Cancer Type", "Cancer"),
		}
	}
}

// Renderer draws the mortality heatmap and the population bar chart.
type Renderer struct{}

var heatmap = engine.NewChart(engine.MarkRect).
	X("Age", engine.Ordinal, engine.SortBy(Ages...)).
	Y("Country", engine.Nominal, engine.Titled("Country")).
	Color("Rate", engine.Quantitative,
		engine.Titled(rateTitle),
		engine.LogScale(0.01, 1000),
		engine.Legend(rateTitle)).
	Tooltip("Rate").
	UseContainerWidth()

var populationBars = engine.NewChart(engine.MarkBar).
	Title(popTitle).
	Y("Country", engine.Nominal, engine.SortByChannel("-x")).
	X("Pop", engine.Quantitative, engine.Sum(), engine.Titled("Sum of population size")).
	Tooltip("Country", "Pop").
	UseContainerWidth()

func (Renderer) Render(subset engine.RecordView, state engine.FilterState) []engine.ChartSpec {
	return []engine.ChartSpec{
		heatmap.Title(HeatmapTitle(state)).Bind(subset),
		populationBars.Bind(subset),
	}
}

// HeatmapTitle interpolates the current cancer, sex and year selections.
func HeatmapTitle(state engine.FilterState) string {
	sex := "females"
	if selected(state, "Sex") == "M" {
		sex = "males"
	}
	return fmt.Sprintf("%s mortality rates for %s in %s",
		selected(state, "Cancer"), sex, selected(state, "Year"))
}

func selected(state engine.FilterState, column string) string {
	p, ok := state.Lookup(column)
	if !ok {
		return ""
	}
	if eq, ok := p.(engine.EqualPredicate); ok {
		return eq.Value
	}
	return ""
}

// Notice names the selected countries without rows. When none can be named
// and the subset is empty it falls back to the generic message.
func Notice(subset engine.RecordView, state engine.FilterState) string {
	var countries []string
	if p, ok := state.Lookup("Country"); ok {
		if sel, ok := p.(engine.OneOfPredicate); ok {
			countries = sel.Values
		}
	}
	return engine.MissingNotice(subset, "Country", countries)
}
