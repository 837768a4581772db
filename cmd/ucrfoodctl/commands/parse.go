package commands

import (
	"os"

	"ucrfood/internal/core/menuparse"

	"github.com/spf13/cobra"
)

var parseContentType string

func init() {
	parseCmd.Flags().StringVar(&parseContentType, "content-type", "text/html", "content type used to pick the page charset")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <page.html>",
	Short: "Parses a saved menu page and prints its sections as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		sections, err := menuparse.Parse(raw, parseContentType)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), sections)
	},
}
