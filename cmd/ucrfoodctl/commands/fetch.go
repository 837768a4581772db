package commands

import (
	"fmt"

	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/guardrails"
	"ucrfood/internal/services/menus/ingest"
	"ucrfood/internal/services/menus/service"

	"github.com/spf13/cobra"
)

var fetchWorkers int

func init() {
	fetchCmd.Flags().IntVar(&fetchWorkers, "workers", 0, "concurrent fetches, defaults to CORE_MENUS_WORKERS")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>...",
	Short: "Fetches and parses menu urls and prints the records, nothing is stored.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := options()
		if err != nil {
			return err
		}
		if fetchWorkers > 0 {
			o.Workers = fetchWorkers
		}
		tasks, err := ingest.Normalize(args)
		if err != nil {
			return err
		}

		timeouts := guardrails.Timeouts{Fetch: o.FetchTimeout, Batch: o.BatchTimeout}
		coord := &service.Coordinator{
			Runner: &service.Pipeline{
				Fetch:    ingest.NewFetcher(o.FetcherOptions()),
				Parse:    ingest.NewParser(),
				Timeouts: timeouts,
			},
			Workers:  o.Workers,
			Timeouts: timeouts,
		}
		batch, runErr := coord.RunAll(cmd.Context(), tasks)

		for _, out := range batch.Outcomes {
			if out.Status == domain.StatusChanged {
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\t%s\t%v\n", out.Status, out.URL, out.Err)
		}
		records := batch.Records
		if records == nil {
			records = []domain.MenuRecord{}
		}
		if err := printJSON(cmd.OutOrStdout(), records); err != nil {
			return err
		}
		return runErr
	},
}
