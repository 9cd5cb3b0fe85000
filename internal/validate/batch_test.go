package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkanlabs/importer/internal/coerce"
)

func batchRows(t *testing.T, n int) []*RawRow {
	t.Helper()
	rows := make([]*RawRow, 0, n)
	for i := 1; i <= n; i++ {
		row := NewRawRow(i)
		row.Set("Sample ID", coerce.TextCell(fmt.Sprintf("S%d", i)))
		row.Set("Collection Date", coerce.TextCell("2024-01-15"))
		// Every third row carries a bad latitude.
		if i%3 == 0 {
			row.Set("Latitude", coerce.TextCell("not-a-number"))
		} else {
			row.Set("Latitude", coerce.TextCell("45.1"))
		}
		rows = append(rows, row)
	}
	return rows
}

func TestProcess_PartitionsEveryRow(t *testing.T) {
	p := NewBatchProcessor(NewRowValidator(sampleSchema(t)), 1)

	rows := batchRows(t, 10)
	out := p.Process(rows)

	assert.Equal(t, 10, out.TotalRows())
	assert.Equal(t, 3, out.ErrorRowCount())
	assert.Equal(t, 3, out.ErrorCount())
	assert.Len(t, out.ValidRows, 7)
}

func TestProcess_PreservesInputOrder(t *testing.T) {
	p := NewBatchProcessor(NewRowValidator(sampleSchema(t)), 4)

	rows := batchRows(t, 50)
	out := p.Process(rows)

	prev := 0
	for _, vr := range out.ValidRows {
		assert.Greater(t, vr.RowIndex, prev)
		prev = vr.RowIndex
	}
	prev = 0
	for _, re := range out.RowErrors {
		assert.Greater(t, re.RowIndex, prev)
		prev = re.RowIndex
	}
}

func TestProcess_ParallelMatchesSequential(t *testing.T) {
	rows := batchRows(t, 40)

	sequential := NewBatchProcessor(NewRowValidator(sampleSchema(t)), 1).Process(rows)
	parallel := NewBatchProcessor(NewRowValidator(sampleSchema(t)), 8).Process(rows)

	assert.Equal(t, sequential, parallel)
}

func TestProcess_ErrorRowCarriesRawSnapshot(t *testing.T) {
	p := NewBatchProcessor(NewRowValidator(sampleSchema(t)), 1)

	row := NewRawRow(1)
	row.Set("Sample ID", coerce.TextCell("S1"))
	row.Set("Collection Date", coerce.TextCell("bogus"))
	row.Set("Latitude", coerce.TextCell("45.1"))

	out := p.Process([]*RawRow{row})
	require.Len(t, out.RowErrors, 1)
	assert.Equal(t, "bogus", out.RowErrors[0].Raw["Collection Date"])
}

func TestProcess_EmptyBatch(t *testing.T) {
	p := NewBatchProcessor(NewRowValidator(sampleSchema(t)), 4)

	out := p.Process(nil)
	assert.Equal(t, 0, out.TotalRows())
	assert.Empty(t, out.ValidRows)
	assert.Empty(t, out.RowErrors)
}

func TestNewBatchProcessor_ClampsWorkers(t *testing.T) {
	p := NewBatchProcessor(NewRowValidator(sampleSchema(t)), 0)
	assert.Equal(t, 1, p.workers)
}
