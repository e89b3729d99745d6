package commands

import (
	"fmt"
	"log/slog"
	"recordscrape/internal/batch"
	"recordscrape/internal/config"
	"recordscrape/internal/job"
	"recordscrape/lib/telemetry"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runFlags struct {
	source      string
	destination string
	workers     int
	delay       float64
	timeout     int
	perfStats   bool
}

func init() {
	flags := runCmd.Flags()
	flags.StringVar(&runFlags.source, "source", "", "Override source_file.")
	flags.StringVar(&runFlags.destination, "destination", "", "Override destination_file.")
	flags.IntVar(&runFlags.workers, "workers", 0, "Override workers.")
	flags.Float64Var(&runFlags.delay, "delay", 0, "Override request_delay_seconds, negative disables the delay.")
	flags.IntVar(&runFlags.timeout, "timeout", 0, "Override timeout_seconds, the partial result is written when it runs out.")
	flags.BoolVar(&runFlags.perfStats, "perf-stats", false, "Record process gauges while running.")
	rootCmd.AddCommand(runCmd)
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceFile = runFlags.source
		if !flags.Changed("destination") {
			cfg.DestinationFile = config.DefaultDestination(runFlags.source)
		}
	}
	if flags.Changed("destination") {
		cfg.DestinationFile = runFlags.destination
	}
	if flags.Changed("workers") {
		cfg.Workers = runFlags.workers
	}
	if flags.Changed("delay") {
		cfg.RequestDelaySeconds = runFlags.delay
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = runFlags.timeout
	}
}

var runCmd = &cobra.Command{
	Use:   "run [--config <path/to/recordscrape.json5>]",
	Short: "Scrapes every record of the source dataset and writes the destination.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, &cfg)

		j, err := job.New(cfg, job.Options{})
		if err != nil {
			return err
		}
		defer j.Close()

		if runFlags.perfStats {
			telemetry.InstrumentPerfStats(cmd.Context(), 10*time.Second)
		}

		observer := batch.ObserverFunc(func(p batch.Progress) {
			attrs := []any{
				"run_id", j.RunID,
				"progress", fmt.Sprintf("%d/%d", p.Done, p.Total),
				"row", p.Result.Row,
				"identifier", p.Result.Identifier,
				"url", p.Result.URL,
				"state", p.Result.State.String(),
			}
			if p.Result.Err != nil {
				attrs = append(attrs, "err", p.Result.Err)
			}
			slog.Info("record processed", attrs...)
		})

		report, err := j.Run(cmd.Context(), observer)
		if err != nil {
			return err
		}
		renderReport(cmd, report)
		return nil
	},
}

func renderReport(cmd *cobra.Command, report job.Report) {
	out := cmd.OutOrStdout()

	failures := report.Summary.Failures()
	if len(failures) > 0 {
		t := newTable(out)
		t.SetTitle("Failures")
		t.AppendHeader(table.Row{"Row", "Identifier", "Reason"})
		for _, f := range failures {
			t.AppendRow(table.Row{f.Row, f.Identifier, truncate(f.Err.Error(), 100)})
		}
		t.Render()
	}

	t := newTable(out)
	t.SetTitle(fmt.Sprintf("Run %s", report.RunID))
	t.AppendRows([]table.Row{
		{"Destination", report.Destination},
		{"Extracted", report.Summary.Extracted},
		{"Failed", report.Summary.Failed},
		{"Pending", report.Summary.Pending},
		{"Duration", report.Summary.Duration.Round(time.Millisecond).String()},
	})
	if report.Cancelled {
		t.AppendFooter(table.Row{"Cancelled", "partial result written"})
	}
	t.Render()
}
