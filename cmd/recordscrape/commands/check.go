package commands

import (
	"fmt"
	"recordscrape/internal/batch"
	"recordscrape/internal/job"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <identifier>",
	Short: "Scrapes a single identifier and prints the extracted text, nothing is written.",
	Args:  cobra.ExactArgs(1),
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

		result, err := j.Check(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.URL != "" {
			fmt.Fprintf(out, "url: %s\n", result.URL)
		}
		fmt.Fprintf(out, "state: %s\n\n", result.State)
		fmt.Fprintln(out, result.Value())

		if result.State != batch.StateExtracted {
			return fmt.Errorf("%s was not extracted", args[0])
		}
		return nil
	},
}
