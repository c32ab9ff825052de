package frame

import (
	"fmt"
	"slices"
)

// Melt converts wide repeated-measure columns into long rows. Every column
// not listed in idVars becomes one (varName, valueName) pair per input row.
// Rows come out column-major: all rows for the first value column, then the
// next, matching the usual melt ordering.
func Melt(t *Table, idVars []string, varName, valueName string) (*Table, error) {
	idPos, err := t.indexesOf(idVars)
	if err != nil {
		return nil, fmt.Errorf("melt: %w", err)
	}

	var valueCols []int
	for i, c := range t.columns {
		if !slices.Contains(idVars, c) {
			valueCols = append(valueCols, i)
		}
	}
	if len(valueCols) == 0 {
		return nil, fmt.Errorf("melt: %w: no value columns besides %v", ErrMissingColumn, idVars)
	}

	outCols := append(slices.Clone(idVars), varName, valueName)
	out, err := New(outCols...)
	if err != nil {
		return nil, fmt.Errorf("melt: %w", err)
	}

	out.rows = make([][]Value, 0, len(valueCols)*len(t.rows))
	for _, vc := range valueCols {
		label := Str(t.columns[vc])
		for _, row := range t.rows {
			r := make([]Value, 0, len(outCols))
			for _, p := range idPos {
				r = append(r, row[p])
			}
			r = append(r, label, row[vc])
			out.appendRow(r)
		}
	}
	return out, nil
}

// Concat stacks tables with identical column lists, in argument order.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("concat: %w: no tables", ErrEmptyResult)
	}
	first := tables[0]
	out := MustNew(first.columns...)
	for i, t := range tables {
		if !slices.Equal(t.columns, first.columns) {
			return nil, fmt.Errorf("concat: table %d columns %v differ from %v", i, t.columns, first.columns)
		}
		for _, row := range t.rows {
			out.appendRow(slices.Clone(row))
		}
	}
	return out, nil
}

// Select keeps the named columns in the given order.
func Select(t *Table, columns ...string) (*Table, error) {
	pos, err := t.indexesOf(columns)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	out, err := New(columns...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	for _, row := range t.rows {
		r := make([]Value, len(pos))
		for i, p := range pos {
			r[i] = row[p]
		}
		out.appendRow(r)
	}
	return out, nil
}
