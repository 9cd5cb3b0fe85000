package validate

import (
	"fmt"

	"github.com/dkanlabs/importer/internal/coerce"
	"github.com/dkanlabs/importer/internal/schema"
)

// ErrorKind classifies a field-level validation failure.
type ErrorKind string

const (
	MissingRequired ErrorKind = "MissingRequired"
	TypeMismatch    ErrorKind = "TypeMismatch"
	FormatInvalid   ErrorKind = "FormatInvalid"
)

// FieldError is a single validation error for one field of one row.
type FieldError struct {
	RowIndex int
	Field    string
	Kind     ErrorKind
	Message  string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s at row[%d]: %s", e.Kind, e.RowIndex, e.Field)
}

// ValidatedRow holds the coerced values of a clean row in schema field order.
type ValidatedRow struct {
	RowIndex int
	Values   []coerce.Value
}

// RowErrors holds the ordered error list for one failed row plus the raw
// values for reporting.
type RowErrors struct {
	RowIndex int
	Errors   []FieldError
	Raw      map[string]string
}

// RowValidator validates rows against a schema. It is stateless across rows
// and safe for concurrent use.
type RowValidator struct {
	schema *schema.Schema
}

// NewRowValidator creates a validator for the given schema.
func NewRowValidator(s *schema.Schema) *RowValidator {
	return &RowValidator{schema: s}
}

// Validate checks one row field by field in schema order. It returns the
// coerced row when no field failed, or the accumulated error list otherwise.
// Columns present in the row but absent from the schema are ignored.
func (v *RowValidator) Validate(row *RawRow) (ValidatedRow, []FieldError) {
	values := make([]coerce.Value, 0, v.schema.Len())
	var errs []FieldError

	for _, fd := range v.schema.Fields() {
		cell := row.Cell(fd)

		if cell.IsEmpty() {
			if fd.Required {
				errs = append(errs, FieldError{
					RowIndex: row.Index,
					Field:    fd.Name,
					Kind:     MissingRequired,
					Message:  "required field is empty",
				})
				continue
			}
			values = append(values, coerce.Absent(fd.Kind))
			continue
		}

		val, cerr := coerce.Coerce(cell, fd)
		if cerr != nil {
			kind := TypeMismatch
			if cerr.FormatRule {
				kind = FormatInvalid
			}
			errs = append(errs, FieldError{
				RowIndex: row.Index,
				Field:    fd.Name,
				Kind:     kind,
				Message:  cerr.Error(),
			})
			continue
		}
		values = append(values, val)
	}

	if len(errs) > 0 {
		return ValidatedRow{}, errs
	}
	return ValidatedRow{RowIndex: row.Index, Values: values}, nil
}
