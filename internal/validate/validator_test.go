package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkanlabs/importer/internal/coerce"
	"github.com/dkanlabs/importer/internal/schema"
)

func sampleSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New([]schema.FieldDescriptor{
		{Name: "sample_id", Title: "Sample ID", Kind: schema.KindString, Required: true},
		{Name: "collection_date", Title: "Collection Date", Kind: schema.KindDateTime, Required: true},
		{Name: "latitude", Title: "Latitude", Kind: schema.KindNumber},
	})
	require.NoError(t, err)
	return s
}

func makeRow(index int, cells map[string]string) *RawRow {
	row := NewRawRow(index)
	for h, v := range cells {
		row.Set(h, coerce.TextCell(v))
	}
	return row
}

func TestValidate_CleanRow(t *testing.T) {
	v := NewRowValidator(sampleSchema(t))

	row := makeRow(1, map[string]string{
		"Sample ID":       "S1",
		"Collection Date": "2024-01-15",
		"Latitude":        "45.123",
	})

	valid, errs := v.Validate(row)
	require.Empty(t, errs)
	assert.Equal(t, 1, valid.RowIndex)
	require.Len(t, valid.Values, 3)
	assert.Equal(t, "S1", valid.Values[0].Str())
	assert.Equal(t, schema.KindDateTime, valid.Values[1].Kind())
	assert.Equal(t, 45.123, valid.Values[2].Float())
}

func TestValidate_AccumulatesAllErrorsInSchemaOrder(t *testing.T) {
	v := NewRowValidator(sampleSchema(t))

	row := makeRow(3, map[string]string{
		"Sample ID":       "",
		"Collection Date": "invalid-date",
		"Latitude":        "not-a-number",
	})

	_, errs := v.Validate(row)
	require.Len(t, errs, 3)

	assert.Equal(t, "sample_id", errs[0].Field)
	assert.Equal(t, MissingRequired, errs[0].Kind)
	assert.Equal(t, "required field is empty", errs[0].Message)

	assert.Equal(t, "collection_date", errs[1].Field)
	assert.Equal(t, FormatInvalid, errs[1].Kind)

	assert.Equal(t, "latitude", errs[2].Field)
	assert.Equal(t, TypeMismatch, errs[2].Kind)

	for _, e := range errs {
		assert.Equal(t, 3, e.RowIndex)
	}
}

func TestValidate_OptionalEmptyFieldIsAbsent(t *testing.T) {
	v := NewRowValidator(sampleSchema(t))

	row := makeRow(1, map[string]string{
		"Sample ID":       "S1",
		"Collection Date": "2024-01-15",
		"Latitude":        "",
	})

	valid, errs := v.Validate(row)
	require.Empty(t, errs)
	assert.True(t, valid.Values[2].IsAbsent())
}

func TestValidate_MissingHeaderReadsAsEmpty(t *testing.T) {
	v := NewRowValidator(sampleSchema(t))

	// Latitude column not present in the spreadsheet at all.
	row := makeRow(1, map[string]string{
		"Sample ID":       "S1",
		"Collection Date": "2024-01-15",
	})

	valid, errs := v.Validate(row)
	require.Empty(t, errs)
	require.Len(t, valid.Values, 3)
	assert.True(t, valid.Values[2].IsAbsent())
}

func TestValidate_UnknownColumnsIgnored(t *testing.T) {
	v := NewRowValidator(sampleSchema(t))

	row := makeRow(1, map[string]string{
		"Sample ID":       "S1",
		"Collection Date": "2024-01-15",
		"Latitude":        "45.1",
		"Scratch Notes":   "ignore me",
	})

	valid, errs := v.Validate(row)
	require.Empty(t, errs)
	assert.Len(t, valid.Values, 3)
}

func TestValidate_MatchesByMachineName(t *testing.T) {
	v := NewRowValidator(sampleSchema(t))

	// Spreadsheet headers use machine names instead of titles.
	row := makeRow(1, map[string]string{
		"sample_id":       "S1",
		"collection_date": "2024-01-15",
		"latitude":        "45.1",
	})

	valid, errs := v.Validate(row)
	require.Empty(t, errs)
	assert.Equal(t, "S1", valid.Values[0].Str())
}

func TestFieldError_Error(t *testing.T) {
	e := FieldError{RowIndex: 7, Field: "latitude", Kind: TypeMismatch}
	assert.Equal(t, "TypeMismatch at row[7]: latitude", e.Error())
}
