// Package survey is the smoking prevalence dashboard over survey extracts.
//
// Extract files carry coded SEX and AGEGRP columns, one indicator column per
// race that holds the race label for respondents who report it, a 0/1 SMOKER
// flag and a person weight PERWT. Files are stacked, recoded and collapsed to
// one row per (YEAR, SEX, AGEGRP, Race) with weighted Smokers, Population
// and Prevalence (percent).
package survey

import (
	"context"
	"fmt"

	"github.com/spektr-org/vizdash/config"
	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/frame"
	"github.com/spektr-org/vizdash/memo"
)

// Name is the dashboard's registry name.
const Name = "survey"

// PrevalenceScale expresses prevalence in percent.
const PrevalenceScale = 100

// SexLabels decodes SEX.
var SexLabels = frame.Lookup{
	"1": "Male",
	"2": "Female",
}

// AgeLabels decodes AGEGRP.
var AgeLabels = frame.Lookup{
	"1": "18-24",
	"2": "25-44",
	"3": "45-64",
	"4": "65+",
}

// AgeOrder is the display order of the decoded age groups.
var AgeOrder = []string{"18-24", "25-44", "45-64", "65+"}

// RaceColumns are the race indicators, in precedence order.
var RaceColumns = []string{"RACE_WHITE", "RACE_BLACK", "RACE_ASIAN", "RACE_AIAN", "RACE_OTHER"}

var keys = []string{"YEAR", "SEX", "AGEGRP", "Race"}

// FileSource reads and stacks CSV files with a shared header.
type FileSource interface {
	Tables(ctx context.Context, locations ...string) (*frame.Table, error)
}

// Load reads every extract file and builds the tidy table.
func Load(ctx context.Context, src FileSource, cfg config.SurveyConfig) (*frame.Table, error) {
	raw, err := src.Tables(ctx, cfg.Files...)
	if err != nil {
		return nil, fmt.Errorf("survey extract: %w", err)
	}
	return Tidy(raw)
}

// Tidy recodes, collapses the race indicators, drops incomplete rows and
// aggregates weighted counts.
func Tidy(raw *frame.Table) (*frame.Table, error) {
	required := append([]string{"YEAR", "SEX", "AGEGRP", "SMOKER", "PERWT"}, RaceColumns...)
	if err := raw.Require(required...); err != nil {
		return nil, fmt.Errorf("survey extract: %w", err)
	}

	t, err := frame.Recode(raw, "SEX", SexLabels)
	if err != nil {
		return nil, err
	}
	if t, err = frame.Recode(t, "AGEGRP", AgeLabels); err != nil {
		return nil, err
	}
	if t, err = frame.Coalesce(t, "Race", RaceColumns...); err != nil {
		return nil, err
	}
	if t, err = frame.DropMissing(t, "YEAR", "SEX", "AGEGRP", "Race", "SMOKER", "PERWT"); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("%w: no complete survey rows", frame.ErrEmptyResult)
	}

	if t, err = frame.Derive(t, "Smokers", frame.Product("SMOKER", "PERWT")); err != nil {
		return nil, err
	}
	if t, err = frame.Derive(t, "Population", func(r frame.RowReader) frame.Value {
		return r.Get("PERWT")
	}); err != nil {
		return nil, err
	}

	summed, err := frame.GroupSum(t, keys, []string{"Smokers", "Population"})
	if err != nil {
		return nil, err
	}
	return frame.DeriveRate(summed, "Prevalence", "Smokers", "Population", PrevalenceScale)
}

// Definition assembles the dashboard over src.
func Definition(cfg config.SurveyConfig, src FileSource) dashboard.Definition {
	return dashboard.Definition{
		Name: Name,
		Key:  memo.Key(append([]string{Name}, cfg.Files...)...),
		Load: func(ctx context.Context) (*frame.Table, error) {
			return Load(ctx, src, cfg)
		},
		Render:   Renderer{},
		Widgets:  Widgets,
		Coverage: []string{"Race"},
	}
}
