// Package report renders human-readable validation error reports and appends
// them to the errors log.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dkanlabs/importer/internal/validate"
)

// DefaultLogFile is where validation reports land unless configured
// otherwise.
const DefaultLogFile = "errors.log"

// Render formats the failed rows of an outcome into the report body:
// a generation timestamp, the rows-with-errors total, and per failing row
// its raw values plus one line per field error.
func Render(outcome validate.Outcome, now time.Time) string {
	var b strings.Builder

	b.WriteString("=============================\n")
	fmt.Fprintf(&b, "Generated at: %s\n\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total rows with errors: %d\n\n", outcome.ErrorRowCount())

	for _, re := range outcome.RowErrors {
		fmt.Fprintf(&b, "Row %d: %d error(s)\n", re.RowIndex, len(re.Errors))
		fmt.Fprintf(&b, "Row data: %s\n", rowData(re.Raw))
		b.WriteString("Errors:\n")
		for _, fe := range re.Errors {
			fmt.Fprintf(&b, "  - %s at row[%d]: %s \u2014 %s\n", fe.Kind, fe.RowIndex, fe.Field, fe.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// rowData renders the raw field values of a failed row as compact JSON,
// falling back to a flat listing when marshaling fails.
func rowData(raw map[string]string) string {
	b, err := json.Marshal(raw)
	if err == nil {
		return string(b)
	}
	pairs := lo.MapToSlice(raw, func(k, v string) string {
		return fmt.Sprintf("%s=%q", k, v)
	})
	return strings.Join(pairs, " ")
}

// AppendLog appends a titled, timestamped entry to the errors log file.
func AppendLog(path, title, body string) error {
	if path == "" {
		path = DefaultLogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("\n[%s] %s:\n%s\n", time.Now().UTC().Format(time.RFC3339), title, body)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("write error log: %w", err)
	}
	return nil
}
