package engine

import "strings"

// ============================================================================
// REPORT — Missing-selection notices
// ============================================================================
// An empty or partial subset is a normal state. The display shows which of
// the selected categories have no matching rows.
// ============================================================================

// MissingValues returns the requested values that do not occur in the
// subset's column, in request order.
func MissingValues(subset RecordView, column string, requested []string) []string {
	present := make(map[string]bool)
	for _, v := range UniqueValues(subset, column) {
		present[v] = true
	}
	var missing []string
	seen := make(map[string]bool)
	for _, r := range requested {
		if !present[r] && !seen[r] {
			seen[r] = true
			missing = append(missing, r)
		}
	}
	return missing
}

// MissingNotice formats the message for a coverage check. Missing values
// are named; an empty subset with nothing to name gets the generic message.
// It returns "" when every requested value is present.
func MissingNotice(subset RecordView, column string, requested []string) string {
	missing := MissingValues(subset, column, requested)
	if len(missing) == 0 {
		if subset.Len() == 0 {
			return EmptySubsetNotice
		}
		return ""
	}
	return "No data available for " + strings.Join(missing, ", ") + "."
}

// EmptySubsetNotice is shown when a pass selects no rows at all.
const EmptySubsetNotice = "No data available for given subset."

// coverageNotice runs the configured coverage checks against state.
func coverageNotice(subset RecordView, state FilterState, columns []string) string {
	var notices []string
	for _, col := range columns {
		p, ok := state.Lookup(col)
		if !ok {
			continue
		}
		sel, ok := p.(OneOfPredicate)
		if !ok {
			continue
		}
		missing := MissingValues(subset, col, sel.Values)
		if len(missing) > 0 {
			notices = append(notices, "No data available for "+strings.Join(missing, ", ")+".")
		}
	}
	if len(notices) == 0 && subset.Len() == 0 && len(columns) > 0 {
		return EmptySubsetNotice
	}
	return strings.Join(notices, " ")
}
