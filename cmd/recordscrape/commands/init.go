package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const configTemplate = `{
  // the dataset to read, the first line must be the header
  source_file: "records.txt",
  // defaults to <source>.scraped.<ext>
  destination_file: "",
  // comma, tab or a single character, inferred from the source extension when empty
  delimiter: "",

  identifier_column: "ev_id",
  derived_column: "Narrative",

  // url = prefix + identifier + suffix
  url_formula: {
    prefix: "http://www.ntsb.gov/aviationquery/brief.aspx?ev_id=",
    suffix: "&key=1",
  },
  // or a named formula, see ` + "`recordscrape formulas`" + `
  // special_formula: { name: "congress-crs", congress: 113 },

  extraction: {
    start: "<span id=\"lblNarrative\">",
    end: "</span>",
    alternate_ends: [],
    // treat start and end as regular expressions
    patterns: false,
    single_line: false,
    strip_tags: false,
    trim: true,
  },
  cleanup_strings: [],

  request_delay_seconds: 0.5,
  workers: 1,
  timeout_seconds: 0,

  http: {
    follow_redirects: false,
    timeout_seconds: 30,
  },
  // cache: { file: ".recordscrape/pages.db", max_age_seconds: 86400 },
  // notify: { server: "smtp.example.com", port: 587, address: "", password: "", to: [] },
  logging: { level: "info" },
}
`

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config.")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [--config <path>]",
	Short: "Writes a commented config template to start a new job from.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !initForce {
			_, err := os.Stat(configPath)
			if err == nil {
				return fmt.Errorf("%s already exists, use --force to overwrite it", configPath)
			}
		}
		err := os.WriteFile(configPath, []byte(configTemplate), 0644)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
		return nil
	},
}
