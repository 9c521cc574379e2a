package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/core/types"
)

// CSVWriter serializes rows under a fixed header. The header is written once,
// before the first row (or on Flush for an empty result), so every export
// carries it. Column order comes from the report definition, never from the
// row.
type CSVWriter struct {
	w       *csv.Writer
	columns []Column
	header  bool
	rows    int
}

// NewCSVWriter creates a writer for the given columns.
func NewCSVWriter(w io.Writer, columns []Column) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), columns: columns}
}

func (c *CSVWriter) writeHeader() error {
	if c.header {
		return nil
	}
	labels := make([]string, len(c.columns))
	for i, col := range c.columns {
		labels[i] = col.Label
	}
	if err := c.w.Write(labels); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	c.header = true
	return nil
}

// Write appends one row. Columns absent from the row are rendered empty.
func (c *CSVWriter) Write(r Row) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	record := make([]string, len(c.columns))
	for i, col := range c.columns {
		v, _ := r.Get(col.Key)
		record[i] = FormatCell(v)
	}
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("write csv row %d: %w", c.rows+1, err)
	}
	c.rows++
	return nil
}

// Flush writes the header if nothing was written yet and flushes buffered output.
func (c *CSVWriter) Flush() error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// Rows returns the number of data rows written.
func (c *CSVWriter) Rows() int { return c.rows }

// FormatCell renders a row value as CSV text.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case types.Amount:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', 2, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// BufferCSV serializes an in-memory result in one go. Intended for small
// results; large exports should stream through CSVWriter.
func BufferCSV(columns []Column, rows []Row) (string, error) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf, columns)
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
