package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, cells := range rows {
		for j, v := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadSheet(t *testing.T) {
	path := writeWorkbook(t, "Samples", [][]any{
		{"Sample ID", "Latitude"},
		{"S1", "45.1"},
		{"S2", "46.2"},
	})

	headers, rows, err := ReadSheet(path, "Samples")
	require.NoError(t, err)

	assert.Equal(t, []string{"Sample ID", "Latitude"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, "S2", rows[1].Snapshot()["Sample ID"])
}

func TestReadSheet_DefaultsToFirstSheet(t *testing.T) {
	path := writeWorkbook(t, "Samples", [][]any{
		{"A"},
		{"1"},
	})

	_, rows, err := ReadSheet(path, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadSheet_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, "Samples", [][]any{{"A"}})

	_, _, err := ReadSheet(path, "Missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `read sheet "Missing"`)
}

func TestParseRows(t *testing.T) {
	headers, rows, err := parseRows([][]string{
		{"Sample ID *", "Collection  Date", "Latitude"},
		{"S1", "2024-01-15", "45.1"},
		{"S2", "2024-01-16"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Sample ID*", "Collection Date", "Latitude"}, headers)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, "S1", rows[0].Snapshot()["Sample ID*"])

	// Short row reads missing trailing cells as empty.
	assert.Equal(t, "", rows[1].Snapshot()["Latitude"])
}

func TestParseRows_SkipsEmptyRows(t *testing.T) {
	_, rows, err := parseRows([][]string{
		{"A", "B"},
		{"1", "2"},
		{"", "  "},
		{},
		{"3", "4"},
	})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, "3", rows[1].Snapshot()["A"])
}

func TestParseRows_SkipsBlankHeaders(t *testing.T) {
	headers, rows, err := parseRows([][]string{
		{"A", "", "C"},
		{"1", "scratch", "3"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "", "C"}, headers)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"A", "C"}, rows[0].Headers())
}

func TestParseRows_NoHeaderRow(t *testing.T) {
	_, _, err := parseRows(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestParseRows_DuplicateHeaders(t *testing.T) {
	_, _, err := parseRows([][]string{
		{"Sample ID", "Latitude", "Sample  ID "},
	})
	require.Error(t, err)

	var dupErr *DuplicateHeaderError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, map[string][]int{"Sample ID": {1, 3}}, dupErr.Duplicates)
	assert.Contains(t, dupErr.Error(), `header "Sample ID" appears in: column 1, column 3`)
}
