// Package cancer is the age-specific cancer mortality dashboard.
//
// Two public CSVs feed it: deaths by country, year, cancer type, sex and age
// bucket, and population by country, year, sex and age bucket, both with
// one column per age bucket. The tidy table has one row per
// (Country, Year, Cancer, Age, Sex) with Deaths, Pop and Rate (deaths per
// 100,000).
package cancer

import (
	"context"
	"fmt"

	"github.com/spektr-org/vizdash/config"
	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/frame"
	"github.com/spektr-org/vizdash/memo"
)

// Name is the dashboard's registry name.
const Name = "cancer"

// RateScale expresses rates per 100,000 population.
const RateScale = 100_000

// Ages is the display order of the age buckets.
var Ages = []string{
	"Age <5",
	"Age 5-14",
	"Age 15-24",
	"Age 25-34",
	"Age 35-44",
	"Age 45-54",
	"Age 55-64",
	"Age >64",
}

var (
	deathIDs = []string{"Country", "Year", "Cancer", "Sex"}
	popIDs   = []string{"Country", "Year", "Sex"}
	keys     = []string{"Country", "Year", "Cancer", "Age", "Sex"}
)

// TableSource reads one CSV location into a table.
type TableSource interface {
	Table(ctx context.Context, location string) (*frame.Table, error)
}

// Load fetches both sources and reshapes them into the tidy table.
func Load(ctx context.Context, src TableSource, cfg config.CancerConfig) (*frame.Table, error) {
	deaths, err := src.Table(ctx, cfg.DeathsURL)
	if err != nil {
		return nil, fmt.Errorf("deaths: %w", err)
	}
	pop, err := src.Table(ctx, cfg.PopulationURL)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	return Tidy(deaths, pop, cfg.Fill.FillSpec("Pop", "Country", "Sex", "Age"))
}

// Tidy melts both tables to one row per age bucket, left-joins population
// onto deaths, fills population gaps within (Country, Sex, Age), drops
// incomplete rows, sums duplicates and derives Rate.
func Tidy(deaths, pop *frame.Table, fill frame.FillSpec) (*frame.Table, error) {
	if err := deaths.Require(deathIDs...); err != nil {
		return nil, fmt.Errorf("deaths: %w", err)
	}
	if err := pop.Require(popIDs...); err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}

	longDeaths, err := frame.Melt(deaths, deathIDs, "Age", "Deaths")
	if err != nil {
		return nil, fmt.Errorf("deaths: %w", err)
	}
	longPop, err := frame.Melt(pop, popIDs, "Age", "Pop")
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}

	merged, err := frame.Merge(longDeaths, longPop, frame.JoinLeft)
	if err != nil {
		return nil, err
	}
	merged, err = frame.FillWithin(merged, fill)
	if err != nil {
		return nil, err
	}
	merged, err = frame.DropMissing(merged)
	if err != nil {
		return nil, err
	}
	if merged.Len() == 0 {
		return nil, fmt.Errorf("%w: no deaths row matched a population row", frame.ErrEmptyResult)
	}

	summed, err := frame.GroupSum(merged, keys, []string{"Deaths", "Pop"})
	if err != nil {
		return nil, err
	}
	return frame.DeriveRate(summed, "Rate", "Deaths", "Pop", RateScale)
}

// Definition assembles the dashboard over src.
func Definition(cfg config.CancerConfig, src TableSource) dashboard.Definition {
	return dashboard.Definition{
		Name: Name,
		Key:  memo.Key(Name, cfg.DeathsURL, cfg.PopulationURL, cfg.Fill.Direction, cfg.Fill.OrderBy),
		Load: func(ctx context.Context) (*frame.Table, error) {
			return Load(ctx, src, cfg)
		},
		Render:   Renderer{},
		Notice:   Notice,
		Widgets:  Widgets(cfg.DefaultCountries),
		Coverage: []string{"Country"},
	}
}
