package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/wwweather/internal/core"
	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

func (a *App) searchCmd() *cobra.Command {
	var (
		criteria  core.Criteria
		window    storage.Window
		group     int
		exportTo  string
		appendTo  bool
		noDisplay bool
		csv       csvFlags
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search weather records and print or export the matches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := criteria.Params()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				window.Limit = a.cfg.Search.Limit
			}
			if !cmd.Flags().Changed("group") {
				group = a.cfg.Search.DisplayGroup
			}
			window.PageSize = a.cfg.Search.PageSize
			if err := window.Validate(); err != nil {
				return err
			}

			req := core.SearchRequest{Window: window, DisplayGroup: group}
			if !noDisplay && !a.silent {
				req.Display = func(records []weather.Record) error {
					return writeGroup(a.out, records, a.cfg.CSV.DateTimeLayout)
				}
			}

			var closeDump func() error
			if exportTo != "" {
				opts, err := a.csvOptions(csv)
				if err != nil {
					return err
				}
				f, err := createOutput(exportTo, appendTo)
				if err != nil {
					return err
				}
				defer f.Close()
				opts.Header = needsHeader(f, appendTo)

				if req.Dumper, err = csvio.NewDumper(f, opts); err != nil {
					return err
				}
				closeDump = func() error {
					if err := req.Dumper.Close(); err != nil {
						return err
					}
					return f.Close()
				}
			}

			return a.withStore(cmd.Context(), func(factory storage.Factory) error {
				sum, err := core.Search(cmd.Context(), factory, params, req)
				if closeDump != nil {
					if cerr := closeDump(); err == nil {
						err = cerr
					}
				}
				if err != nil {
					return err
				}
				a.printf("Search complete: %d records found.\n", sum.Found)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&criteria.Country, "country", "", "country name")
	flags.StringVar(&criteria.Location, "location", "", "location name")
	flags.StringVar(&criteria.Latitude, "lat", "", "latitude, used together with --lng")
	flags.StringVar(&criteria.Longitude, "lng", "", "longitude, used together with --lat")
	flags.StringVar(&criteria.Timezone, "timezone", "", "IANA time zone, e.g. Europe/Kyiv")
	flags.StringVar(&criteria.Date, "date", "", "local day YYYY-MM-DD (overrides --from and --to)")
	flags.StringVar(&criteria.From, "from", "", "first local day YYYY-MM-DD")
	flags.StringVar(&criteria.To, "to", "", "last local day YYYY-MM-DD, inclusive")
	flags.IntVar(&window.Limit, "limit", 0, "return at most this many records (0 for all)")
	flags.IntVar(&window.Offset, "offset", 0, "skip this many matches first")
	flags.IntVar(&group, "group", core.DefaultDisplayGroup, "records printed side by side")
	flags.StringVar(&exportTo, "export", "", "also write the matches to this CSV file")
	flags.BoolVar(&appendTo, "append", false, "append to the --export file instead of overwriting it")
	flags.BoolVar(&noDisplay, "no-display", false, "do not print the matches")
	csv.register(cmd, csvio.DefaultEncoding)
	return cmd
}

