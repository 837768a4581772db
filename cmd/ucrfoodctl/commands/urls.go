package commands

import (
	"fmt"
	"time"

	"ucrfood/internal/adapters/ingest/foodpro"
	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/services/menus/domain"

	"github.com/spf13/cobra"
)

var (
	urlsLocations string
	urlsDays      int
	urlsFrom      string
)

func init() {
	urlsCmd.Flags().StringVar(&urlsLocations, "locations", "", "locations INI file, defaults to CORE_MENUS_LOCATIONS")
	urlsCmd.Flags().IntVar(&urlsDays, "days", 0, "days per location, defaults to CORE_MENUS_DAYS")
	urlsCmd.Flags().StringVar(&urlsFrom, "from", "", "first day as MM-DD-YYYY, defaults to today")
	rootCmd.AddCommand(urlsCmd)
}

var urlsCmd = &cobra.Command{
	Use:   "urls [--locations <file>] [--days N] [--from MM-DD-YYYY]",
	Short: "Prints the url block the ingest command would fetch.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		o, err := options()
		if err != nil {
			return err
		}
		if urlsLocations != "" {
			o.Locations = urlsLocations
		}
		if urlsDays > 0 {
			o.Days = urlsDays
		}
		start := time.Now()
		if urlsFrom != "" {
			t, ok := domain.ParseMenuDate(urlsFrom)
			if !ok {
				return perr.WithField(perr.InvalidArgf("--from %q is not MM-DD-YYYY", urlsFrom), "from")
			}
			start = t
		}

		locs, err := foodpro.LoadLocations(o.Locations)
		if err != nil {
			return err
		}
		for _, u := range locs.Block(start, o.Days) {
			fmt.Fprintln(cmd.OutOrStdout(), u)
		}
		return nil
	},
}
