package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// FILTERS — Ordered predicate pipeline via RecordView
// ============================================================================
// One predicate per widget. Predicates are applied in declared order; each
// narrows the rows the previous one kept. The result is a SubView (index list
// into the parent), never a mutation of the loaded table.
// ============================================================================

// ErrUnknownColumn indicates a predicate on a column the table does not have.
var ErrUnknownColumn = errors.New("engine: unknown filter column")

// Predicate is one filter step driven by one widget value.
type Predicate interface {
	Column() string
	Match(view RecordView, i int) bool
	String() string
}

// FilterState is the ordered set of predicates for one reactive pass.
type FilterState []Predicate

// Validate checks that every predicate targets a column present in view.
func (s FilterState) Validate(view RecordView) error {
	var unknown []string
	for _, p := range s {
		if !hasKey(view, p.Column()) {
			unknown = append(unknown, p.Column())
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, strings.Join(unknown, ", "))
	}
	return nil
}

// Lookup returns the first predicate on column.
func (s FilterState) Lookup(column string) (Predicate, bool) {
	for _, p := range s {
		if p.Column() == column {
			return p, true
		}
	}
	return nil, false
}

// String renders the state for logs.
func (s FilterState) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}

// Apply returns the rows of view satisfying every predicate in state.
// An empty result is a valid subset, not an error.
func Apply(view RecordView, state FilterState) (RecordView, error) {
	if err := state.Validate(view); err != nil {
		return nil, err
	}
	current := view
	for _, p := range state {
		n := current.Len()
		indices := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if p.Match(current, i) {
				indices = append(indices, i)
			}
		}
		current = newSubView(current, indices)
	}
	if len(state) == 0 {
		// always hand back a fresh view
		indices := make([]int, view.Len())
		for i := range indices {
			indices[i] = i
		}
		current = newSubView(view, indices)
	}
	return current, nil
}

// ============================================================================
// PREDICATES
// ============================================================================

// EqualPredicate matches rows whose column text equals Value exactly.
type EqualPredicate struct {
	Col   string
	Value string
}

// Equal builds an exact-match predicate (selectbox, radio, single slider value).
func Equal(column, value string) EqualPredicate {
	return EqualPredicate{Col: column, Value: value}
}

// EqualNumber is Equal for a numeric selection such as a year slider.
func EqualNumber(column string, value float64) EqualPredicate {
	return Equal(column, strconv.FormatFloat(value, 'f', -1, 64))
}

func (p EqualPredicate) Column() string { return p.Col }

func (p EqualPredicate) Match(view RecordView, i int) bool {
	return view.Dimension(i, p.Col) == p.Value
}

func (p EqualPredicate) String() string { return fmt.Sprintf("%s = %q", p.Col, p.Value) }

// OneOfPredicate matches rows whose column text is in Values. An empty set
// matches nothing, the way an emptied multiselect shows no data.
type OneOfPredicate struct {
	Col    string
	Values []string
	set    map[string]struct{}
}

// OneOf builds a set-membership predicate (multiselect).
func OneOf(column string, values ...string) OneOfPredicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return OneOfPredicate{Col: column, Values: values, set: set}
}

func (p OneOfPredicate) Column() string { return p.Col }

func (p OneOfPredicate) Match(view RecordView, i int) bool {
	val := view.Dimension(i, p.Col)
	if p.set == nil {
		// built as a literal rather than through OneOf
		for _, v := range p.Values {
			if v == val {
				return true
			}
		}
		return false
	}
	_, ok := p.set[val]
	return ok
}

func (p OneOfPredicate) String() string {
	return fmt.Sprintf("%s IN (%s)", p.Col, strings.Join(p.Values, ", "))
}

// BetweenPredicate matches rows whose numeric column lies in [Min, Max].
// Missing and non-numeric cells never match.
type BetweenPredicate struct {
	Col      string
	Min, Max float64
}

// Between builds an inclusive range predicate (range slider).
func Between(column string, lo, hi float64) BetweenPredicate {
	if lo > hi {
		lo, hi = hi, lo
	}
	return BetweenPredicate{Col: column, Min: lo, Max: hi}
}

func (p BetweenPredicate) Column() string { return p.Col }

func (p BetweenPredicate) Match(view RecordView, i int) bool {
	v, err := strconv.ParseFloat(view.Dimension(i, p.Col), 64)
	if err != nil {
		return false
	}
	return v >= p.Min && v <= p.Max
}

func (p BetweenPredicate) String() string {
	return fmt.Sprintf("%s BETWEEN %g AND %g", p.Col, p.Min, p.Max)
}
