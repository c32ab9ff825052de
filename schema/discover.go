package schema

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/frame"
)

// ============================================================================
// DISCOVERY — Column classification from values
// ============================================================================
// Pipeline per column: count → detect temporal → classify role → hint.
// Numeric columns with few distinct integer values are coded dimensions
// (a year, a sex code); everything else numeric is a measure.
// ============================================================================

const maxSamples = 10

// Describe profiles every column of tbl.
func Describe(name string, tbl *frame.Table) *Profile {
	p := &Profile{Dashboard: name, Rows: tbl.Len()}
	for _, col := range tbl.Columns() {
		p.Columns = append(p.Columns, analyzeColumn(col, tbl))
	}
	return p
}

func analyzeColumn(name string, tbl *frame.Table) ColumnProfile {
	col := ColumnProfile{
		Name:        name,
		DisplayName: toDisplayName(name),
		Kind:        tbl.Kind(name).String(),
	}

	unique := make(map[string]bool)
	integral := true
	col.Min, col.Max = math.Inf(1), math.Inf(-1)
	for _, v := range tbl.Values(name) {
		if v.IsNull() {
			col.Nulls++
			continue
		}
		unique[v.String()] = true
		if f, ok := v.Float(); ok {
			col.Min = math.Min(col.Min, f)
			col.Max = math.Max(col.Max, f)
			if f != math.Trunc(f) {
				integral = false
			}
		}
	}
	if math.IsInf(col.Min, 1) {
		col.Min, col.Max = 0, 0
	}
	col.Distinct = len(unique)

	if col.Distinct == 0 {
		col.Role = RoleEmpty
		return col
	}
	col.Samples = collectSamples(unique, maxSamples)
	col.IsTemporal = detectTemporal(name, col, integral)
	col.classifyRole(tbl.Len(), integral)

	switch {
	case col.Distinct <= 10:
		col.CardinalityHint = "low"
	case col.Distinct <= 100:
		col.CardinalityHint = "medium"
	default:
		col.CardinalityHint = "high"
	}
	col.Widget = suggestWidget(col)
	return col
}

// classifyRole determines dimension vs measure vs identifier.
func (col *ColumnProfile) classifyRole(totalRows int, integral bool) {
	if col.Kind == frame.KindNumber.String() {
		switch {
		case col.IsTemporal:
			col.Role = RoleDimension
		case !integral:
			// continuous
			col.Role = RoleMeasure
		case col.Distinct < 20 && float64(col.Distinct)/float64(totalRows) < 0.3:
			// coded, e.g. a sex or age group code
			col.Role = RoleDimension
		default:
			col.Role = RoleMeasure
		}
		return
	}
	if col.Distinct == totalRows && totalRows > 10 {
		col.Role = RoleIdentifier
		return
	}
	col.Role = RoleDimension
}

// detectTemporal flags year columns: integral values in a plausible range,
// or a column named like one.
func detectTemporal(name string, col ColumnProfile, integral bool) bool {
	if col.Kind != frame.KindNumber.String() || !integral {
		return false
	}
	lower := strings.ToLower(name)
	if lower == "year" || strings.HasSuffix(lower, "_year") {
		return true
	}
	return col.Min >= 1900 && col.Max <= 2100 && col.Distinct <= 200
}

// suggestWidget maps a dimension to the control that filters it.
func suggestWidget(col ColumnProfile) dashboard.WidgetKind {
	if col.Role != RoleDimension {
		return ""
	}
	switch {
	case col.IsTemporal:
		return dashboard.Slider
	case col.Distinct <= 3:
		return dashboard.Radio
	case col.Distinct <= 100:
		return dashboard.MultiSelect
	default:
		return dashboard.SelectBox
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// toDisplayName turns "AGEGRP" or "order_by" into a title-cased label.
func toDisplayName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// collectSamples returns up to n distinct values, sorted for stable output.
func collectSamples(unique map[string]bool, n int) []string {
	samples := make([]string, 0, len(unique))
	for v := range unique {
		samples = append(samples, v)
	}
	sort.Strings(samples)
	if len(samples) > n {
		samples = samples[:n]
	}
	return samples
}
