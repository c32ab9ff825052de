package frame

import (
	"fmt"
	"slices"
)

// JoinKind selects which unmatched rows a Merge keeps.
type JoinKind int

const (
	// JoinLeft keeps every left row; unmatched right columns are null.
	JoinLeft JoinKind = iota
	// JoinInner keeps only matched rows.
	JoinInner
	// JoinOuter keeps every row from both sides.
	JoinOuter
)

func (k JoinKind) String() string {
	switch k {
	case JoinInner:
		return "inner"
	case JoinOuter:
		return "outer"
	default:
		return "left"
	}
}

// Merge joins two tables on key columns. With no keys, the columns the two
// tables share are used. Output columns are the left columns followed by the
// right non-key columns; non-key names present on both sides get "_x" and
// "_y" suffixes. Null keys never match.
//
// Left rows keep their order; each is followed by all its right matches in
// right order. For JoinOuter, unmatched right rows are appended at the end.
func Merge(left, right *Table, how JoinKind, on ...string) (*Table, error) {
	if len(on) == 0 {
		for _, c := range left.columns {
			if right.Has(c) {
				on = append(on, c)
			}
		}
		if len(on) == 0 {
			return nil, fmt.Errorf("merge: %w: no shared columns", ErrMissingColumn)
		}
	}

	leftKeys, err := left.indexesOf(on)
	if err != nil {
		return nil, fmt.Errorf("merge left: %w", err)
	}
	rightKeys, err := right.indexesOf(on)
	if err != nil {
		return nil, fmt.Errorf("merge right: %w", err)
	}

	// Output layout
	var rightExtra []int
	for i, c := range right.columns {
		if !slices.Contains(on, c) {
			rightExtra = append(rightExtra, i)
		}
	}
	outCols := make([]string, 0, len(left.columns)+len(rightExtra))
	for _, c := range left.columns {
		if !slices.Contains(on, c) && right.Has(c) {
			c += "_x"
		}
		outCols = append(outCols, c)
	}
	for _, i := range rightExtra {
		c := right.columns[i]
		if left.Has(c) {
			c += "_y"
		}
		outCols = append(outCols, c)
	}
	out, err := New(outCols...)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	// Hash the right side
	lookup := make(map[string][]int, len(right.rows))
	for i, row := range right.rows {
		if k, ok := rowKey(row, rightKeys); ok {
			lookup[k] = append(lookup[k], i)
		}
	}

	matchedRight := make([]bool, len(right.rows))
	width := len(outCols)
	for _, lrow := range left.rows {
		var matches []int
		if k, ok := rowKey(lrow, leftKeys); ok {
			matches = lookup[k]
		}
		if len(matches) == 0 {
			if how == JoinInner {
				continue
			}
			r := make([]Value, width)
			copy(r, lrow)
			out.appendRow(r)
			continue
		}
		for _, ri := range matches {
			matchedRight[ri] = true
			r := make([]Value, 0, width)
			r = append(r, lrow...)
			for _, p := range rightExtra {
				r = append(r, right.rows[ri][p])
			}
			out.appendRow(r)
		}
	}

	if how == JoinOuter {
		for ri, rrow := range right.rows {
			if matchedRight[ri] {
				continue
			}
			r := make([]Value, width)
			for k, lp := range leftKeys {
				r[lp] = rrow[rightKeys[k]]
			}
			for j, p := range rightExtra {
				r[len(left.columns)+j] = rrow[p]
			}
			out.appendRow(r)
		}
	}

	return out, nil
}
