package commands

import (
	"recordscrape/lib/formula"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(formulasCmd)
}

var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "Lists the special formulas that can be used instead of a url prefix and suffix.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Name", "Description"})
		for _, name := range formula.Names() {
			description, _ := formula.Describe(name)
			t.AppendRow(table.Row{name, description})
		}
		t.Render()
	},
}
