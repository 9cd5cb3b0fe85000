// Package output renders validated rows into the CSV shape expected by DKAN.
// Column order equals schema field order regardless of the spreadsheet's
// column order, so every import of the same dictionary produces the same
// file shape.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/dkanlabs/importer/internal/coerce"
	"github.com/dkanlabs/importer/internal/schema"
	"github.com/dkanlabs/importer/internal/validate"
)

// numericPlaceholder renders an absent number so DKAN's type inference sees
// a DECIMAL(18, 6) column rather than text.
const numericPlaceholder = "000000000000.000000"

// Formatter renders coerced values against a schema.
type Formatter struct {
	schema *schema.Schema
}

// NewFormatter creates a formatter for the given schema.
func NewFormatter(s *schema.Schema) *Formatter {
	return &Formatter{schema: s}
}

// Header returns the CSV header row: machine names in schema order.
func (f *Formatter) Header() []string {
	return lo.Map(f.schema.Fields(), func(fd schema.FieldDescriptor, _ int) string {
		return fd.Name
	})
}

// Record renders one validated row into CSV fields in schema order.
func (f *Formatter) Record(row validate.ValidatedRow) []string {
	fields := f.schema.Fields()
	out := make([]string, len(fields))
	for i, fd := range fields {
		out[i] = Render(row.Values[i], fd)
	}
	return out
}

// Render converts one coerced value to its canonical textual form.
// Dates render as ISO 8601 dates unless the value carried time-of-day
// precision; absent numeric fields render as typed placeholders.
func Render(v coerce.Value, fd schema.FieldDescriptor) string {
	if v.IsAbsent() {
		switch fd.Kind {
		case schema.KindNumber:
			return numericPlaceholder
		case schema.KindInteger:
			return "0"
		default:
			return ""
		}
	}

	switch v.Kind() {
	case schema.KindInteger:
		return strconv.FormatInt(v.Int(), 10)
	case schema.KindNumber:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case schema.KindBoolean:
		return strconv.FormatBool(v.Bool())
	case schema.KindDateTime:
		t, clock := v.Time()
		if clock {
			return t.Format("2006-01-02T15:04:05")
		}
		return t.Format("2006-01-02")
	case schema.KindArray:
		// Semicolons keep array cells from fighting the CSV delimiter.
		return strings.Join(v.Items(), ";")
	case schema.KindObject:
		b, err := json.Marshal(v.Object())
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return v.Str()
	}
}

// WriteCSV writes the header and all valid rows to w.
func WriteCSV(w io.Writer, f *Formatter, rows []validate.ValidatedRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(f.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(f.Record(row)); err != nil {
			return fmt.Errorf("write row %d: %w", row.RowIndex, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
