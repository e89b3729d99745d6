// Package job turns a validated config into a runnable scrape: it loads the
// source dataset, runs the batch and writes the destination.
package job

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"recordscrape/internal/batch"
	"recordscrape/internal/components/chrono"
	"recordscrape/internal/components/telemetry"
	"recordscrape/internal/config"
	"recordscrape/lib/extract"
	"recordscrape/lib/fetch"
	"recordscrape/lib/formula"
	"recordscrape/lib/notify"
	"recordscrape/lib/pagecache"
	"recordscrape/lib/restyutil"
	"recordscrape/lib/tabular"
	"time"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("recordscrape/job")

const (
	report_job_notify = "job.notify"
	report_job_cache  = "job.cache"
)

type Job struct {
	Config    config.Config
	RunID     string
	Delimiter rune
	Formula   formula.Formula
	Extractor *extract.Extractor
	Fetcher   fetch.Fetcher

	tel     telemetry.API
	clock   chrono.API
	cacheDb *sql.DB
}

type Options struct {
	// Fetcher replaces the http client, the cache and throttling are still
	// applied around it.
	Fetcher   fetch.Fetcher
	Telemetry telemetry.API
	// Clock decides cache expiry, defaults to the system clock.
	Clock chrono.API
}

// New validates cfg and builds every component of the job. Close must be
// called once the job is no longer used.
func New(cfg config.Config, opts Options) (*Job, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	runID, err := random.String(8)
	if err != nil {
		return nil, err
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}

	clock := opts.Clock
	if clock == nil {
		clock = chrono.StandardImpl{}
	}

	j := &Job{
		Config: cfg,
		RunID:  runID,
		tel:    telemetry.NewScopedAPI(runID, tel),
		clock:  clock,
	}

	j.Delimiter, err = cfg.ParseDelimiter()
	if err != nil {
		return nil, err
	}
	j.Formula, err = cfg.Formula()
	if err != nil {
		return nil, err
	}
	j.Extractor, err = cfg.ExtractSpec(j.Formula).Compile()
	if err != nil {
		return nil, err
	}

	j.Fetcher, err = j.buildFetcher(opts.Fetcher)
	if err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *Job) buildFetcher(base fetch.Fetcher) (fetch.Fetcher, error) {
	cfg := j.Config
	if base == nil {
		var output restyutil.InstrumentOutput
		if cfg.Http.DebugDir != "" {
			fsOutput, err := restyutil.NewFilesystemOutput(cfg.Http.DebugDir, j.RunID)
			if err != nil {
				return nil, fmt.Errorf("create debug dir: %w", err)
			}
			output = fsOutput
		}

		client := fetch.NewClient(fetch.ClientOptions{
			FollowRedirects:  cfg.Http.FollowRedirects,
			Timeout:          cfg.HttpTimeout(),
			UserAgent:        cfg.Http.UserAgent,
			CloudflareBypass: cfg.Http.CloudflareBypass,
			Output:           output,
		})
		telemetry.InstrumentResty(client.Http, telemetry.NewScopedAPI("fetch", j.tel))
		base = client
	}

	fetcher := fetch.Throttle(base, cfg.RequestDelay())
	if !cfg.Cache.Enabled() {
		return fetcher, nil
	}

	db, err := cfg.Cache.OpenDB()
	if err != nil {
		return nil, fmt.Errorf("open page cache: %w", err)
	}
	j.cacheDb = db

	store := pagecache.NewStore(db, time.Duration(cfg.Cache.MaxAgeSeconds)*time.Second, j.clock)
	pruned, err := store.Prune(context.Background())
	if err != nil {
		j.tel.ReportWarning(report_job_cache, err)
	} else if pruned > 0 {
		slog.Debug("pruned expired pages", "count", pruned)
	}
	return pagecache.NewFetcher(store, fetcher), nil
}

func (j *Job) Close() error {
	if j.cacheDb == nil {
		return nil
	}
	return j.cacheDb.Close()
}

func (j *Job) batchOptions(observer batch.Observer) batch.Options {
	return batch.Options{
		Formula:          j.Formula,
		Fetcher:          j.Fetcher,
		Extractor:        j.Extractor,
		IdentifierColumn: j.Config.IdentifierColumn,
		DerivedColumn:    j.Config.DerivedColumn,
		UrlColumn:        config.UrlColumn,
		Workers:          j.Config.Workers,
		Observer:         observer,
		Telemetry:        telemetry.NewScopedAPI("batch", j.tel),
	}
}

// Load reads the source dataset.
func (j *Job) Load() (*tabular.Dataset, error) {
	return tabular.LoadFile(j.Config.SourceFile, j.Delimiter)
}

type Report struct {
	RunID       string
	Destination string
	Summary     batch.Summary
	// Cancelled is set when the batch stopped early, the destination then
	// holds the partial result.
	Cancelled bool
}

// Run loads the source, processes every record and writes the destination
// exactly once, also when ctx is cancelled half way.
func (j *Job) Run(ctx context.Context, observer batch.Observer) (Report, error) {
	ctx, span := tracer.Start(ctx, "job:Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", j.RunID),
		attribute.String("source", j.Config.SourceFile),
	)

	ds, err := j.Load()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load source")
		return Report{}, err
	}

	batchCtx := ctx
	if timeout := j.Config.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	slog.InfoContext(
		ctx, "starting batch",
		"run_id", j.RunID,
		"records", ds.Len(),
		"workers", j.Config.Workers,
		"formula", j.Formula.Name(),
	)
	summary, err := batch.Run(batchCtx, ds, j.batchOptions(observer))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start batch")
		return Report{}, err
	}
	report := Report{
		RunID:       j.RunID,
		Destination: j.Config.DestinationFile,
		Summary:     summary,
		Cancelled:   batchCtx.Err() != nil,
	}
	if report.Cancelled {
		slog.WarnContext(ctx, "batch stopped early, writing partial result", "pending", summary.Pending)
	}

	err = ds.WriteFile(j.Config.DestinationFile, j.Delimiter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write destination")
		return report, fmt.Errorf("write %s: %w", j.Config.DestinationFile, err)
	}
	slog.InfoContext(
		ctx, "batch finished",
		"run_id", j.RunID,
		"destination", j.Config.DestinationFile,
		"extracted", summary.Extracted,
		"failed", summary.Failed,
		"pending", summary.Pending,
		"duration", summary.Duration.String(),
	)

	if j.Config.Notify.Enabled() {
		// the context may already be cancelled, the summary is still worth sending
		err = notify.NewNotifier(j.Config.Notify).Send(context.WithoutCancel(ctx), j.notifySummary(report))
		if err != nil {
			j.tel.ReportWarning(report_job_notify, err)
		}
	}
	return report, nil
}

func (j *Job) notifySummary(report Report) notify.Summary {
	s := notify.Summary{
		Job:         j.Config.DerivedColumn,
		RunID:       report.RunID,
		Source:      j.Config.SourceFile,
		Destination: report.Destination,
		Extracted:   report.Summary.Extracted,
		Failed:      report.Summary.Failed,
		Pending:     report.Summary.Pending,
		Duration:    report.Summary.Duration,
	}
	for _, f := range report.Summary.Failures() {
		s.Failures = append(s.Failures, notify.Failure{
			Row:        f.Row,
			Identifier: f.Identifier,
			Reason:     f.Err.Error(),
		})
	}
	return s
}
