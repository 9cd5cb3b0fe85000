// Package validate applies a schema to spreadsheet rows, coercing cells and
// accumulating ordered per-field errors. Row-level failures never abort the
// batch: every input row lands in exactly one of the valid or errored
// partitions of the outcome.
package validate

import (
	"github.com/dkanlabs/importer/internal/coerce"
	"github.com/dkanlabs/importer/internal/schema"
)

// RawRow is one data row as delivered by the spreadsheet reader: an ordered
// mapping from normalized header to raw cell. Index is the 1-based position
// among data rows.
type RawRow struct {
	Index   int
	headers []string
	cells   map[string]coerce.Cell
}

// NewRawRow builds a row for the given 1-based data row index.
func NewRawRow(index int) *RawRow {
	return &RawRow{
		Index: index,
		cells: make(map[string]coerce.Cell),
	}
}

// Set records a cell under its normalized header, preserving first-seen
// header order.
func (r *RawRow) Set(header string, cell coerce.Cell) {
	key := schema.NormalizeHeader(header)
	if _, ok := r.cells[key]; !ok {
		r.headers = append(r.headers, key)
	}
	r.cells[key] = cell
}

// Cell looks up the cell for a field, trying the field's title first and
// falling back to its machine name. A header missing from the row reads as
// an empty cell.
func (r *RawRow) Cell(fd schema.FieldDescriptor) coerce.Cell {
	if fd.Title != "" {
		if c, ok := r.cells[schema.NormalizeHeader(fd.Title)]; ok {
			return c
		}
	}
	if c, ok := r.cells[schema.NormalizeHeader(fd.Name)]; ok {
		return c
	}
	return coerce.Cell{}
}

// Headers returns the normalized headers in input order.
func (r *RawRow) Headers() []string {
	return r.headers
}

// Snapshot renders the raw values keyed by header, for error reports.
func (r *RawRow) Snapshot() map[string]string {
	out := make(map[string]string, len(r.headers))
	for _, h := range r.headers {
		out[h] = r.cells[h].Snapshot()
	}
	return out
}
