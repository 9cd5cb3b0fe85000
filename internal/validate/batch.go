package validate

// batch.go drives the row validator across a whole batch. Rows are
// independent, so validation may fan out across workers; results are
// re-indexed into input order before the outcome is assembled, keeping the
// ordering contract independent of execution order.

import "sync"

// Outcome is the complete partition of a batch: every input row appears in
// exactly one of ValidRows or RowErrors, both in input order.
type Outcome struct {
	ValidRows []ValidatedRow
	RowErrors []RowErrors
}

// TotalRows returns the number of input rows accounted for.
func (o Outcome) TotalRows() int {
	return len(o.ValidRows) + len(o.RowErrors)
}

// ErrorRowCount returns the number of rows that failed validation.
func (o Outcome) ErrorRowCount() int {
	return len(o.RowErrors)
}

// ErrorCount returns the total number of field errors across all rows.
func (o Outcome) ErrorCount() int {
	n := 0
	for _, re := range o.RowErrors {
		n += len(re.Errors)
	}
	return n
}

// BatchProcessor validates all rows of a batch, best-effort: one bad row
// never stops the rest.
type BatchProcessor struct {
	validator *RowValidator
	workers   int
}

// NewBatchProcessor creates a processor running up to workers validations in
// parallel. Values below 2 select sequential processing.
func NewBatchProcessor(v *RowValidator, workers int) *BatchProcessor {
	if workers < 1 {
		workers = 1
	}
	return &BatchProcessor{validator: v, workers: workers}
}

type rowResult struct {
	row    *RawRow
	valid  ValidatedRow
	errors []FieldError
}

// Process validates every row and assembles the outcome in input order.
func (p *BatchProcessor) Process(rows []*RawRow) Outcome {
	results := make([]rowResult, len(rows))

	if p.workers > 1 && len(rows) > 1 {
		p.runParallel(rows, results)
	} else {
		for i, row := range rows {
			valid, errs := p.validator.Validate(row)
			results[i] = rowResult{row: row, valid: valid, errors: errs}
		}
	}

	var out Outcome
	for _, res := range results {
		if len(res.errors) > 0 {
			out.RowErrors = append(out.RowErrors, RowErrors{
				RowIndex: res.row.Index,
				Errors:   res.errors,
				Raw:      res.row.Snapshot(),
			})
			continue
		}
		out.ValidRows = append(out.ValidRows, res.valid)
	}
	return out
}

// runParallel fans row validation out across workers. Each result lands in
// its input slot, so assembly order never depends on completion order.
func (p *BatchProcessor) runParallel(rows []*RawRow, results []rowResult) {
	indices := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(rows) {
		workers = len(rows)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				valid, errs := p.validator.Validate(rows[i])
				results[i] = rowResult{row: rows[i], valid: valid, errors: errs}
			}
		}()
	}

	for i := range rows {
		indices <- i
	}
	close(indices)
	wg.Wait()
}
