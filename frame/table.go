package frame

import (
	"fmt"
	"strings"
)

// ============================================================================
// TABLE — row-oriented tabular data
// ============================================================================
// A Table is built once by a loader and read many times afterwards. Every
// relational operation in this package returns a new Table; none mutates its
// input. Table satisfies engine.RecordView so the filter pipeline and the
// chart builders read it directly.
// ============================================================================

// Table is an ordered set of named columns with rows of Values.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New creates an empty table. Duplicate column names are rejected.
func New(columns ...string) (*Table, error) {
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("frame: duplicate column %q", c)
		}
		t.columns[i] = c
		t.index[c] = i
	}
	return t, nil
}

// MustNew is New for fixed column lists known to be valid.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Append adds a row. The row must have one value per column.
func (t *Table) Append(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("frame: row has %d values, table has %d columns", len(values), len(t.columns))
	}
	row := make([]Value, len(values))
	copy(row, values)
	t.rows = append(t.rows, row)
	return nil
}

// appendRow takes ownership of row without copying.
func (t *Table) appendRow(row []Value) {
	t.rows = append(t.rows, row)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the table has a column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Require fails with ErrMissingColumn naming every absent column.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// At returns the value at row i of column. Out-of-range rows and unknown
// columns read as null.
func (t *Table) At(i int, column string) Value {
	c, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return Null()
	}
	return t.rows[i][c]
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Values returns the column's values in row order.
func (t *Table) Values(column string) []Value {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[c]
	}
	return out
}

// Kind reports the column's kind: KindNumber when every non-null value is a
// number, KindString when any value is a string, KindNull when all are null.
func (t *Table) Kind(column string) Kind {
	c, ok := t.index[column]
	if !ok {
		return KindNull
	}
	kind := KindNull
	for _, row := range t.rows {
		switch row[c].kind {
		case KindString:
			return KindString
		case KindNumber:
			kind = KindNumber
		}
	}
	return kind
}

// ── engine.RecordView ──────────────────────────────────────────────────────

// Dimension returns the text form of a cell.
func (t *Table) Dimension(i int, key string) string {
	return t.At(i, key).String()
}

// Measure returns the numeric content of a cell, 0 for strings and nulls.
func (t *Table) Measure(i int, key string) float64 {
	f, _ := t.At(i, key).Float()
	return f
}

// DimensionKeys returns every column. Numeric columns such as a year are
// still valid grouping and filtering keys.
func (t *Table) DimensionKeys() []string { return t.Columns() }

// MeasureKeys returns the numeric columns.
func (t *Table) MeasureKeys() []string {
	var keys []string
	for _, c := range t.columns {
		if t.Kind(c) == KindNumber {
			keys = append(keys, c)
		}
	}
	return keys
}

// ── internal helpers ───────────────────────────────────────────────────────

// indexesOf resolves column names to positions.
func (t *Table) indexesOf(columns []string) ([]int, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.index[c]
	}
	return idx, nil
}

// rowKey builds a composite key for the given positions. ok is false when any
// key value is null.
func rowKey(row []Value, positions []int) (string, bool) {
	var b strings.Builder
	for i, p := range positions {
		v := row[p]
		if v.IsNull() {
			return "", false
		}
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteByte(byte('0' + v.kind))
		b.WriteString(v.String())
	}
	return b.String(), true
}
