package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/vizdash/frame"
)

// ============================================================================
// CSV — Parses CSV data into a frame.Table
// ============================================================================
// The header row names the columns. Every cell goes through frame.Parse, so
// numbers become numeric values and NA-style markers become nulls. A row with
// a different field count than the header makes the whole source malformed:
// a half-read table is never returned.
// ============================================================================

// ReadCSV parses CSV from r into a table.
func ReadCSV(r io.Reader) (*frame.Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = strings.TrimSpace(h)
	}
	// Spreadsheet exports often start with a byte order mark.
	columns[0] = strings.TrimPrefix(columns[0], "\ufeff")

	tbl, err := frame.New(columns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	values := make([]frame.Value, len(columns))
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		for i, cell := range row {
			values[i] = frame.Parse(cell)
		}
		if err := tbl.Append(values...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return tbl, nil
}
