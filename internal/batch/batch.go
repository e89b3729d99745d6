// Package batch runs the formulate, fetch and extract steps over every
// record of a dataset.
package batch

import (
	"context"
	"errors"
	"fmt"
	"recordscrape/internal/components/telemetry"
	"recordscrape/lib/extract"
	"recordscrape/lib/fetch"
	"recordscrape/lib/formula"
	"recordscrape/lib/tabular"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("recordscrape/batch")
var meter = otel.Meter("recordscrape/batch")
var processedCounter, _ = meter.Int64Counter(
	"records_processed",
	metric.WithDescription("records processed by outcome"),
)

const (
	report_batch_identifier = "batch.identifier"
	report_batch_fetch      = "batch.fetch"
	report_batch_extract    = "batch.extract"
	report_batch_column     = "batch.column"
	report_batch_extracted  = "batch.extracted"
	report_batch_failed     = "batch.failed"
)

// DefaultUrlColumn receives the formulated url of every record.
const DefaultUrlColumn = "URL"

type Options struct {
	Formula   formula.Formula
	Fetcher   fetch.Fetcher
	Extractor *extract.Extractor

	IdentifierColumn string
	DerivedColumn    string
	// UrlColumn defaults to DefaultUrlColumn.
	UrlColumn string

	// Workers is the number of records processed at once, it defaults to 1.
	// Rate limiting belongs to the Fetcher.
	Workers int
	// Observer is called once per processed record, calls are serialized.
	Observer  Observer
	Telemetry telemetry.API
}

func (o Options) validate() error {
	var errs []error
	if o.Formula == nil {
		errs = append(errs, fmt.Errorf("a url formula is required"))
	}
	if o.Fetcher == nil {
		errs = append(errs, fmt.Errorf("a fetcher is required"))
	}
	if o.Extractor == nil {
		errs = append(errs, fmt.Errorf("an extractor is required"))
	}
	if o.IdentifierColumn == "" {
		errs = append(errs, fmt.Errorf("an identifier column is required"))
	}
	if o.DerivedColumn == "" {
		errs = append(errs, fmt.Errorf("a derived column is required"))
	}
	if o.DerivedColumn != "" && o.DerivedColumn == o.UrlColumn {
		errs = append(errs, fmt.Errorf("the derived column cannot be the url column %q", o.UrlColumn))
	}
	return errors.Join(errs...)
}

type runner struct {
	opts Options
	tel  telemetry.API
	ds   *tabular.Dataset

	observeMu sync.Mutex
	done      int
}

// Run processes every record of ds and writes the URL and derived columns
// into it. Per record failures never stop the batch, they are written into
// the derived column instead. When ctx is cancelled no new fetches are
// started and the remaining records are left pending, Run still returns the
// partial summary and ds holds everything completed so far.
//
// An error is only returned when opts are unusable, ds is untouched then.
func Run(ctx context.Context, ds *tabular.Dataset, opts Options) (Summary, error) {
	if opts.UrlColumn == "" {
		opts.UrlColumn = DefaultUrlColumn
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	err := opts.validate()
	if err != nil {
		return Summary{}, err
	}

	ctx, span := tracer.Start(ctx, "batch:Run")
	defer span.End()
	span.SetAttributes(
		attribute.Int("records", ds.Len()),
		attribute.Int("workers", opts.Workers),
		attribute.String("formula", opts.Formula.Name()),
	)

	r := &runner{opts: opts, tel: opts.Telemetry, ds: ds}
	if !ds.HasColumn(opts.IdentifierColumn) {
		suggestion, ok := tabular.SuggestColumn(ds.Header(), opts.IdentifierColumn)
		if ok {
			r.tel.ReportWarning(report_batch_column, fmt.Errorf("identifier column %q not in header, did you mean %q?", opts.IdentifierColumn, suggestion))
		} else {
			r.tel.ReportWarning(report_batch_column, fmt.Errorf("identifier column %q not in header", opts.IdentifierColumn))
		}
	}
	ds.AppendColumns(opts.UrlColumn, opts.DerivedColumn)

	start := time.Now()
	results := make([]Result, ds.Len())
	for i := range results {
		results[i] = Result{Row: i + 1, State: StatePending}
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range ds.Records {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = r.process(ctx, i)
			r.observe(results[i])
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{Results: results, Duration: time.Since(start)}
	for i, res := range results {
		rec := &ds.Records[i]
		if res.URL != "" {
			rec.Set(opts.UrlColumn, res.URL)
		}
		rec.Set(opts.DerivedColumn, res.Value())

		switch res.State {
		case StateExtracted:
			summary.Extracted++
		case StateFailed:
			summary.Failed++
		default:
			summary.Pending++
		}
	}

	r.tel.ReportCount(report_batch_extracted, int64(summary.Extracted))
	r.tel.ReportCount(report_batch_failed, int64(summary.Failed))
	span.SetAttributes(
		attribute.Int("extracted", summary.Extracted),
		attribute.Int("failed", summary.Failed),
		attribute.Int("pending", summary.Pending),
	)
	if ctx.Err() != nil {
		span.SetStatus(codes.Error, "batch cancelled")
	}
	return summary, nil
}

func (r *runner) observe(res Result) {
	r.observeMu.Lock()
	defer r.observeMu.Unlock()

	r.done++
	if r.opts.Observer != nil {
		r.opts.Observer.Observe(Progress{
			Done:   r.done,
			Total:  r.ds.Len(),
			Result: res,
		})
	}
}

func (r *runner) process(ctx context.Context, i int) (res Result) {
	ctx, span := tracer.Start(ctx, "batch:process")
	defer span.End()

	res = Result{Row: i + 1, State: StatePending}
	defer func() {
		span.SetAttributes(
			attribute.Int("row", res.Row),
			attribute.String("state", res.State.String()),
		)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.State.String())
		}
		processedCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", res.State.String()),
		))
	}()

	rec := r.ds.Records[i]
	identifier, ok := rec.Get(r.opts.IdentifierColumn)
	if !ok {
		res.State = StateFailed
		res.Err = &IdentifierError{Column: r.opts.IdentifierColumn, Missing: true}
		r.tel.ReportWarning(report_batch_identifier, res.Row, res.Err)
		return res
	}
	res.Identifier = identifier

	url, err := r.opts.Formula.Formulate(identifier)
	if err != nil {
		res.State = StateFailed
		res.Err = &IdentifierError{Column: r.opts.IdentifierColumn, Err: err}
		r.tel.ReportWarning(report_batch_identifier, res.Row, identifier, err)
		return res
	}
	res.URL = url
	span.SetAttributes(attribute.String("url", url))

	if ctx.Err() != nil {
		return res
	}
	page, err := r.opts.Fetcher.Fetch(ctx, url)
	if err != nil {
		if errors.Is(err, fetch.ErrNotStarted) || (ctx.Err() != nil && fetch.IsCancelled(err)) {
			return res
		}
		var transportErr *fetch.TransportError
		if !errors.As(err, &transportErr) {
			err = &fetch.TransportError{URL: url, Err: err}
		}
		res.State = StateFailed
		res.Err = err
		r.tel.ReportWarning(report_batch_fetch, res.Row, url, err)
		return res
	}

	text, err := r.opts.Extractor.Extract(page)
	if err != nil {
		res.State = StateFailed
		res.Err = &ExtractionError{URL: url, Err: err}
		r.tel.ReportWarning(report_batch_extract, res.Row, url, err)
		return res
	}

	res.State = StateExtracted
	res.Text = text
	r.tel.ReportDebug("record extracted", res.Row, url, len(text))
	return res
}
