package survey

import (
	"fmt"
	"slices"

	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/engine"
	"github.com/spektr-org/vizdash/frame"
)

// Widgets declares year, sex and race selections. Every race is selected
// by default.
func Widgets(tbl *frame.Table) []dashboard.Widget {
	races := dashboard.Choice(tbl, dashboard.MultiSelect, "Select Races", "Race")
	races.Default = slices.Clone(races.Options)
	return []dashboard.Widget{
		dashboard.YearSlider(tbl, "Select a Year", "YEAR"),
		dashboard.Choice(tbl, dashboard.Radio, "Select Sex", "SEX"),
		races,
	}
}

// Renderer draws prevalence by race, population share and the age bubble
// chart.
type Renderer struct{}

var prevalenceBars = engine.NewChart(engine.MarkBar).
	X("Race", engine.Nominal, engine.SortByChannel("-y")).
	Y("Prevalence", engine.Quantitative, engine.Titled("Smoking prevalence (%)")).
	Color("Race", engine.Nominal).
	Tooltip("Race", "Prevalence", "Population").
	UseContainerWidth()

var populationArc = engine.NewChart(engine.MarkArc).
	Title("Population share by race").
	Theta("Population", engine.Quantitative, engine.Sum()).
	Color("Race", engine.Nominal, engine.Legend("Race")).
	Tooltip("Race", "Population")

var ageBubbles = engine.NewChart(engine.MarkPoint).
	Title("Smoking prevalence by age group").
	X("AGEGRP", engine.Ordinal, engine.SortBy(AgeOrder...), engine.Titled("Age group")).
	Y("Prevalence", engine.Quantitative, engine.Titled("Smoking prevalence (%)")).
	Size("Population", engine.Quantitative).
	Color("Race", engine.Nominal).
	Tooltip("Race", "AGEGRP", "Prevalence", "Population").
	UseContainerWidth()

func (Renderer) Render(subset engine.RecordView, state engine.FilterState) []engine.ChartSpec {
	title := "Smoking prevalence by race"
	if p, ok := state.Lookup("YEAR"); ok {
		if eq, ok := p.(engine.EqualPredicate); ok {
			title = fmt.Sprintf("%s in %s", title, eq.Value)
		}
	}
	return []engine.ChartSpec{
		prevalenceBars.Title(title).Bind(ByRace(subset)),
		populationArc.Bind(subset),
		ageBubbles.Bind(subset),
	}
}

// ByRace re-aggregates a subset to one row per race. Prevalence is
// recomputed from the summed counts, not averaged.
func ByRace(subset engine.RecordView) engine.RecordView {
	groups := engine.GroupAndAggregate(subset, "Race", "Population", "label_asc", 0)
	records := make([]engine.Record, 0, len(groups))
	for _, g := range groups {
		smokers := engine.SumMeasure(g.View, "Smokers")
		rec := engine.Record{
			Dimensions: map[string]string{"Race": g.Key},
			Measures:   map[string]float64{"Smokers": smokers, "Population": g.Value},
		}
		if rate, ok := frame.Rate(smokers, g.Value, PrevalenceScale); ok {
			rec.Measures["Prevalence"] = rate
		}
		records = append(records, rec)
	}
	return engine.NewSliceView(records)
}
