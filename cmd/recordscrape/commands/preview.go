package commands

import (
	"recordscrape/internal/job"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var previewLimit int

func init() {
	previewCmd.Flags().IntVarP(&previewLimit, "limit", "n", 10, "Number of records to preview, 0 previews all of them.")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [-n <records>]",
	Short: "Prints the url formulated for each record without fetching anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		j, err := job.New(cfg, job.Options{})
		if err != nil {
			return err
		}
		defer j.Close()

		ds, err := j.Load()
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Row", cfg.IdentifierColumn, "URL"})
		for _, row := range j.Preview(ds, previewLimit) {
			url := row.URL
			if row.Err != nil {
				url = "(" + row.Err.Error() + ")"
			}
			t.AppendRow(table.Row{row.Row, row.Identifier, url})
		}
		t.AppendFooter(table.Row{"", "records", ds.Len()})
		t.Render()
		return nil
	},
}
