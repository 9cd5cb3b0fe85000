package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkanlabs/importer/internal/validate"
)

func TestRender(t *testing.T) {
	outcome := validate.Outcome{
		RowErrors: []validate.RowErrors{
			{
				RowIndex: 3,
				Errors: []validate.FieldError{
					{RowIndex: 3, Field: "sample_id", Kind: validate.MissingRequired, Message: "required field is empty"},
					{RowIndex: 3, Field: "latitude", Kind: validate.TypeMismatch, Message: `expected number, got "abc"`},
				},
				Raw: map[string]string{"Latitude": "abc"},
			},
		},
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got := Render(outcome, now)

	assert.Contains(t, got, "=============================\n")
	assert.Contains(t, got, "Generated at: 2024-06-01T12:00:00Z\n")
	assert.Contains(t, got, "Total rows with errors: 1\n")
	assert.Contains(t, got, "Row 3: 2 error(s)\n")
	assert.Contains(t, got, `Row data: {"Latitude":"abc"}`)
	assert.Contains(t, got, "Errors:\n")
	assert.Contains(t, got, "  - MissingRequired at row[3]: sample_id — required field is empty\n")
	assert.Contains(t, got, `  - TypeMismatch at row[3]: latitude `+"—"+` expected number, got "abc"`+"\n")
}

func TestRender_NoErrors(t *testing.T) {
	got := Render(validate.Outcome{}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, got, "Total rows with errors: 0\n")
	assert.NotContains(t, got, "Row data:")
}

func TestRender_ConvertsTimestampToUTC(t *testing.T) {
	loc := time.FixedZone("X", 2*3600)
	got := Render(validate.Outcome{}, time.Date(2024, 6, 1, 14, 0, 0, 0, loc))

	assert.Contains(t, got, "Generated at: 2024-06-01T12:00:00Z\n")
}

func TestAppendLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")

	require.NoError(t, AppendLog(path, "validation errors", "first body"))
	require.NoError(t, AppendLog(path, "validation errors", "second body"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "validation errors:\nfirst body\n")
	assert.Contains(t, content, "validation errors:\nsecond body\n")
}
