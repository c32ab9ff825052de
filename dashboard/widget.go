package dashboard

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spektr-org/vizdash/engine"
)

// ============================================================================
// WIDGETS — Selection controls and their translation to predicates
// ============================================================================
// The widget surface is external. A Widget only describes the control: which
// column it filters, what it offers and what it selects by default. StateFrom
// turns the host's plain selected values into a FilterState, one predicate per
// widget in declared order.
// ============================================================================

// WidgetKind is the control type, which decides the predicate it drives.
type WidgetKind string

const (
	Slider      WidgetKind = "slider"      // single numeric value, exact match
	RangeSlider WidgetKind = "range"       // two numeric values, inclusive
	Radio       WidgetKind = "radio"       // one option, exact match
	SelectBox   WidgetKind = "selectbox"   // one option, exact match
	MultiSelect WidgetKind = "multiselect" // any options, set membership
)

// Widget describes one selection control.
type Widget struct {
	Label   string     `json:"label" msgpack:"label"`
	Column  string     `json:"column" msgpack:"column"`
	Kind    WidgetKind `json:"kind" msgpack:"kind"`
	Options []string   `json:"options,omitempty" msgpack:"options,omitempty"`
	Min     float64    `json:"min,omitempty" msgpack:"min,omitempty"`
	Max     float64    `json:"max,omitempty" msgpack:"max,omitempty"`
	Default []string   `json:"default,omitempty" msgpack:"default,omitempty"`
}

// Selection maps a widget's column to the values the user picked. A missing
// entry means the widget shows its default.
type Selection map[string][]string

// ParseSelection reads "Column=v1,v2" pairs, as given on a command line.
// Repeated columns accumulate.
func ParseSelection(pairs []string) (Selection, error) {
	sel := make(Selection)
	for _, pair := range pairs {
		col, raw, ok := strings.Cut(pair, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("selection %q: want Column=value[,value]", pair)
		}
		if _, seen := sel[col]; !seen {
			sel[col] = []string{}
		}
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				sel[col] = append(sel[col], v)
			}
		}
	}
	return sel, nil
}

// StateFrom builds the filter state for sel, falling back to each widget's
// default. Selections for columns no widget controls are rejected.
func StateFrom(widgets []Widget, sel Selection) (engine.FilterState, error) {
	for col := range sel {
		if !slices.ContainsFunc(widgets, func(w Widget) bool { return w.Column == col }) {
			return nil, fmt.Errorf("%w: %s", engine.ErrUnknownColumn, col)
		}
	}

	state := make(engine.FilterState, 0, len(widgets))
	for _, w := range widgets {
		values, ok := sel[w.Column]
		if !ok {
			values = w.Default
		}
		p, err := w.predicate(values)
		if err != nil {
			return nil, err
		}
		state = append(state, p)
	}
	return state, nil
}

func (w Widget) predicate(values []string) (engine.Predicate, error) {
	switch w.Kind {
	case MultiSelect:
		return engine.OneOf(w.Column, values...), nil
	case Slider:
		if len(values) != 1 {
			return nil, fmt.Errorf("%s: slider takes one value, got %d", w.Label, len(values))
		}
		v, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", w.Label, err)
		}
		return engine.EqualNumber(w.Column, v), nil
	case RangeSlider:
		if len(values) != 2 {
			return nil, fmt.Errorf("%s: range takes two values, got %d", w.Label, len(values))
		}
		lo, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", w.Label, err)
		}
		hi, err := strconv.ParseFloat(values[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", w.Label, err)
		}
		return engine.Between(w.Column, lo, hi), nil
	default:
		if len(values) != 1 {
			return nil, fmt.Errorf("%s: %s takes one value, got %d", w.Label, w.Kind, len(values))
		}
		return engine.Equal(w.Column, values[0]), nil
	}
}

// ============================================================================
// WIDGET BUILDERS — options derived from the loaded table
// ============================================================================

// YearSlider offers the column's min..max and defaults to the minimum.
func YearSlider(view engine.RecordView, label, column string) Widget {
	lo, hi, _ := engine.MeasureRange(view, column)
	return Widget{
		Label:   label,
		Column:  column,
		Kind:    Slider,
		Min:     lo,
		Max:     hi,
		Default: []string{strconv.FormatFloat(lo, 'f', -1, 64)},
	}
}

// Choice offers the column's distinct values, first seen first, and
// defaults to the first.
func Choice(view engine.RecordView, kind WidgetKind, label, column string) Widget {
	opts := engine.UniqueValues(view, column)
	w := Widget{Label: label, Column: column, Kind: kind, Options: opts}
	if len(opts) > 0 {
		w.Default = opts[:1:1]
	}
	return w
}

// Multi offers the column's distinct values with the given defaults.
func Multi(view engine.RecordView, label, column string, defaults []string) Widget {
	return Widget{
		Label:   label,
		Column:  column,
		Kind:    MultiSelect,
		Options: engine.UniqueValues(view, column),
		Default: slices.Clone(defaults),
	}
}
