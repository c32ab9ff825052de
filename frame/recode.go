package frame

import (
	"fmt"
	"slices"
)

// Lookup maps a code's text form ("1", "2", "M") to a readable label.
type Lookup map[string]string

// Recode replaces codes in column with their labels. Codes the lookup does not
// know pass through unchanged, and nulls stay null.
func Recode(t *Table, column string, lookup Lookup) (*Table, error) {
	c, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("recode: %w: %s", ErrMissingColumn, column)
	}
	out := MustNew(t.columns...)
	for _, row := range t.rows {
		r := slices.Clone(row)
		if !r[c].IsNull() {
			if label, ok := lookup[r[c].String()]; ok {
				r[c] = Str(label)
			}
		}
		out.appendRow(r)
	}
	return out, nil
}

// Coalesce collapses a group of mutually exclusive columns into target by
// taking the first non-null value in group order. The group columns are
// dropped and target takes the position of the first one.
func Coalesce(t *Table, target string, group ...string) (*Table, error) {
	if len(group) == 0 {
		return nil, fmt.Errorf("coalesce %s: empty column group", target)
	}
	pos, err := t.indexesOf(group)
	if err != nil {
		return nil, fmt.Errorf("coalesce: %w", err)
	}

	first := pos[0]
	for _, p := range pos {
		first = min(first, p)
	}

	var outCols []string
	var keep []int // source positions; -1 marks the target slot
	for i, c := range t.columns {
		switch {
		case i == first:
			outCols = append(outCols, target)
			keep = append(keep, -1)
		case slices.Contains(pos, i):
		default:
			outCols = append(outCols, c)
			keep = append(keep, i)
		}
	}
	out, err := New(outCols...)
	if err != nil {
		return nil, fmt.Errorf("coalesce: %w", err)
	}

	for _, row := range t.rows {
		r := make([]Value, len(keep))
		for i, k := range keep {
			if k >= 0 {
				r[i] = row[k]
				continue
			}
			for _, p := range pos {
				if !row[p].IsNull() {
					r[i] = row[p]
					break
				}
			}
		}
		out.appendRow(r)
	}
	return out, nil
}
