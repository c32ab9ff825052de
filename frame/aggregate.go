package frame

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// DropMissing removes rows with a null in any of columns, or in any column
// at all when none are named.
func DropMissing(t *Table, columns ...string) (*Table, error) {
	var pos []int
	if len(columns) == 0 {
		pos = make([]int, len(t.columns))
		for i := range pos {
			pos[i] = i
		}
	} else {
		var err error
		if pos, err = t.indexesOf(columns); err != nil {
			return nil, fmt.Errorf("drop missing: %w", err)
		}
	}

	out := MustNew(t.columns...)
	for _, row := range t.rows {
		complete := true
		for _, p := range pos {
			if row[p].IsNull() {
				complete = false
				break
			}
		}
		if complete {
			out.appendRow(slices.Clone(row))
		}
	}
	return out, nil
}

// GroupSum aggregates to one row per distinct combination of keys, summing
// each measure and skipping nulls. Output columns are keys then measures;
// rows are sorted by key. With no measures named, every numeric non-key
// column is summed.
func GroupSum(t *Table, keys []string, measures []string) (*Table, error) {
	keyPos, err := t.indexesOf(keys)
	if err != nil {
		return nil, fmt.Errorf("group sum: %w", err)
	}
	if measures == nil {
		for _, c := range t.columns {
			if !slices.Contains(keys, c) && t.Kind(c) == KindNumber {
				measures = append(measures, c)
			}
		}
	}
	measPos, err := t.indexesOf(measures)
	if err != nil {
		return nil, fmt.Errorf("group sum: %w", err)
	}

	out, err := New(append(slices.Clone(keys), measures...)...)
	if err != nil {
		return nil, fmt.Errorf("group sum: %w", err)
	}

	type group struct {
		key  []Value
		sums []float64
	}
	groups := make(map[string]*group)
	for _, row := range t.rows {
		k, ok := rowKey(row, keyPos)
		if !ok {
			continue
		}
		g, exists := groups[k]
		if !exists {
			g = &group{key: make([]Value, len(keyPos)), sums: make([]float64, len(measPos))}
			for i, p := range keyPos {
				g.key[i] = row[p]
			}
			groups[k] = g
		}
		for i, p := range measPos {
			if f, ok := row[p].Float(); ok {
				g.sums[i] += f
			}
		}
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(a, b int) bool {
		for i := range sorted[a].key {
			if c := Compare(sorted[a].key[i], sorted[b].key[i]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	for _, g := range sorted {
		r := make([]Value, 0, len(keyPos)+len(measPos))
		r = append(r, g.key...)
		for _, s := range g.sums {
			r = append(r, Num(s))
		}
		out.appendRow(r)
	}
	return out, nil
}

// Derive appends a column computed from each row. fn sees a read-only row
// accessor.
func Derive(t *Table, target string, fn func(row RowReader) Value) (*Table, error) {
	out, err := New(append(t.Columns(), target)...)
	if err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	for _, row := range t.rows {
		r := make([]Value, 0, len(row)+1)
		r = append(r, row...)
		r = append(r, fn(RowReader{table: t, row: row}))
		out.appendRow(r)
	}
	return out, nil
}

// RowReader reads cells of one row by column name.
type RowReader struct {
	table *Table
	row   []Value
}

// Get returns the named cell, null for unknown columns.
func (r RowReader) Get(column string) Value {
	c, ok := r.table.index[column]
	if !ok {
		return Null()
	}
	return r.row[c]
}

// Product multiplies two numeric cells; null when either is not a number.
func Product(a, b string) func(RowReader) Value {
	return func(r RowReader) Value {
		x, ok1 := r.Get(a).Float()
		y, ok2 := r.Get(b).Float()
		if !ok1 || !ok2 {
			return Null()
		}
		return Num(x * y)
	}
}

// Rate computes a / b * scale in decimal arithmetic so that terminating
// decimal results are exact (5 / 200 * 100000 is 2500, not 2500.0000000000005).
// A zero or missing denominator yields ok == false.
func Rate(a, b, scale float64) (float64, bool) {
	if b == 0 {
		return 0, false
	}
	num := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(scale))
	f, _ := num.Div(decimal.NewFromFloat(b)).Float64()
	return f, true
}

// DeriveRate appends target = numerator / denominator * scale. Rows with a
// missing or zero denominator get a null rate.
func DeriveRate(t *Table, target, numerator, denominator string, scale float64) (*Table, error) {
	if err := t.Require(numerator, denominator); err != nil {
		return nil, fmt.Errorf("derive rate: %w", err)
	}
	return Derive(t, target, func(r RowReader) Value {
		a, ok1 := r.Get(numerator).Float()
		b, ok2 := r.Get(denominator).Float()
		if !ok1 || !ok2 {
			return Null()
		}
		rate, ok := Rate(a, b, scale)
		if !ok {
			return Null()
		}
		return Num(rate)
	})
}
