package job

import (
	"context"
	"recordscrape/internal/batch"
	"recordscrape/lib/tabular"
)

type PreviewRow struct {
	Row        int
	Identifier string
	URL        string
	Err        error
}

// Preview formulates the url of the first limit records without fetching
// anything. A limit <= 0 previews every record.
func (j *Job) Preview(ds *tabular.Dataset, limit int) []PreviewRow {
	n := ds.Len()
	if limit > 0 && limit < n {
		n = limit
	}

	rows := make([]PreviewRow, n)
	for i := 0; i < n; i++ {
		row := PreviewRow{Row: i + 1}
		identifier, ok := ds.Records[i].Get(j.Config.IdentifierColumn)
		if !ok {
			row.Err = &batch.IdentifierError{Column: j.Config.IdentifierColumn, Missing: true}
			rows[i] = row
			continue
		}
		row.Identifier = identifier
		row.URL, row.Err = j.Formula.Formulate(identifier)
		rows[i] = row
	}
	return rows
}

// Check runs a single identifier through the batch without touching the
// source or destination files.
func (j *Job) Check(ctx context.Context, identifier string) (batch.Result, error) {
	ds, err := tabular.NewDataset([]string{j.Config.IdentifierColumn})
	if err != nil {
		return batch.Result{}, err
	}
	rec := tabular.NewRecord()
	rec.Set(j.Config.IdentifierColumn, identifier)
	ds.Append(rec)

	summary, err := batch.Run(ctx, ds, j.batchOptions(nil))
	if err != nil {
		return batch.Result{}, err
	}
	return summary.Results[0], nil
}
