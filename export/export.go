// Package export serializes a pass for display surfaces and downstream
// tools: the subset as CSV or an Arrow IPC stream, charts as MessagePack.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/spektr-org/vizdash/engine"
)

func columnsOf(view engine.RecordView, columns []string) []string {
	if len(columns) == 0 {
		return view.DimensionKeys()
	}
	return columns
}

// WriteCSV writes the view's columns (all when none are named) with a
// header row. Nulls are empty cells.
func WriteCSV(w io.Writer, view engine.RecordView, columns ...string) error {
	columns = columnsOf(view, columns)
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := make([]string, len(columns))
	for i := 0; i < view.Len(); i++ {
		for j, c := range columns {
			record[j] = view.Dimension(i, c)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Schema maps the view's columns to Arrow fields: measure keys become
// nullable float64, everything else nullable utf8.
func Schema(view engine.RecordView, columns ...string) *arrow.Schema {
	columns = columnsOf(view, columns)
	measures := view.MeasureKeys()
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		typ := arrow.DataType(arrow.BinaryTypes.String)
		if slices.Contains(measures, c) {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{Name: c, Type: typ, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// WriteArrow writes the view as a single-batch Arrow IPC stream.
func WriteArrow(w io.Writer, view engine.RecordView, columns ...string) error {
	columns = columnsOf(view, columns)
	schema := Schema(view, columns...)
	alloc := memory.DefaultAllocator

	builder := array.NewRecordBuilder(alloc, schema)
	defer builder.Release()

	for i := 0; i < view.Len(); i++ {
		for j, c := range columns {
			text := view.Dimension(i, c)
			switch b := builder.Field(j).(type) {
			case *array.Float64Builder:
				if text == "" {
					b.AppendNull()
				} else {
					b.Append(view.Measure(i, c))
				}
			case *array.StringBuilder:
				if text == "" {
					b.AppendNull()
				} else {
					b.Append(text)
				}
			}
		}
	}

	record := builder.NewRecordBatch()
	defer record.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(alloc))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write IPC record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close IPC writer: %w", err)
	}
	return nil
}

// WriteMsgpack encodes v, typically a pass or its charts.
func WriteMsgpack(w io.Writer, v any) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	return nil
}
