// Package xlsx reads Excel workbooks into the raw rows the validator
// consumes. Cells are read raw, so dates arrive as serial numbers and reach
// the coercer unmangled by display formatting.
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dkanlabs/importer/internal/coerce"
	"github.com/dkanlabs/importer/internal/schema"
	"github.com/dkanlabs/importer/internal/validate"
)

// DuplicateHeaderError reports workbook headers that normalize to the same
// label.
type DuplicateHeaderError struct {
	// Duplicates maps each offending header to its 1-based column positions.
	Duplicates map[string][]int
}

func (e *DuplicateHeaderError) Error() string {
	var lines []string
	for header, cols := range e.Duplicates {
		positions := make([]string, len(cols))
		for i, c := range cols {
			positions[i] = fmt.Sprintf("column %d", c)
		}
		lines = append(lines, fmt.Sprintf("header %q appears in: %s", header, strings.Join(positions, ", ")))
	}
	return "workbook contains duplicate column headers: " + strings.Join(lines, "; ")
}

// ReadSheet opens the workbook and returns the normalized headers plus the
// raw data rows of the named sheet. An empty sheet name selects the first
// sheet.
func ReadSheet(path, sheet string) ([]string, []*validate.RawRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

// parseRows turns a sheet's cell grid into normalized headers and raw rows.
// The first row is the header row; rows whose cells are all empty are
// skipped and never counted. Row indices are 1-based positions among the
// kept data rows.
func parseRows(rows [][]string) ([]string, []*validate.RawRow, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet has no header row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = schema.NormalizeHeader(h)
	}
	if err := checkDuplicateHeaders(headers); err != nil {
		return nil, nil, err
	}

	var out []*validate.RawRow
	index := 0
	for _, cells := range rows[1:] {
		if emptyRow(cells) {
			continue
		}
		index++
		row := validate.NewRawRow(index)
		for col, header := range headers {
			if header == "" {
				continue
			}
			var cell coerce.Cell
			if col < len(cells) {
				cell = coerce.TextCell(cells[col])
			}
			row.Set(header, cell)
		}
		out = append(out, row)
	}
	return headers, out, nil
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func checkDuplicateHeaders(headers []string) error {
	positions := make(map[string][]int)
	for i, h := range headers {
		if h == "" {
			continue
		}
		positions[h] = append(positions[h], i+1)
	}

	dups := make(map[string][]int)
	for h, cols := range positions {
		if len(cols) > 1 {
			dups[h] = cols
		}
	}
	if len(dups) > 0 {
		return &DuplicateHeaderError{Duplicates: dups}
	}
	return nil
}
