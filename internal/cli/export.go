package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/wwweather/internal/core"
	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/storage"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		window   storage.Window
		appendTo bool
		noHeader bool
		csv      csvFlags
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export all weather records to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("block-size") {
				window.PageSize = a.cfg.Export.BlockSize
			}
			if err := window.Validate(); err != nil {
				return err
			}
			opts, err := a.csvOptions(csv)
			if err != nil {
				return err
			}

			f, err := createOutput(args[0], appendTo)
			if err != nil {
				return err
			}
			defer f.Close()
			opts.Header = !noHeader && needsHeader(f, appendTo)

			dumper, err := csvio.NewDumper(f, opts)
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(factory storage.Factory) error {
				sum, err := core.Export(cmd.Context(), factory, dumper, core.ExportRequest{Window: window})
				if cerr := dumper.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				a.printf("Export complete: %d records exported.\n", sum.Exported)
				return f.Close()
			})
		},
	}

	cmd.Flags().IntVar(&window.PageSize, "block-size", 1000, "records read from the database at a time (0 for all at once)")
	cmd.Flags().IntVar(&window.Limit, "limit", 0, "export at most this many records (0 for all)")
	cmd.Flags().IntVar(&window.Offset, "offset", 0, "skip this many records first")
	cmd.Flags().BoolVar(&appendTo, "append", false, "append to FILE instead of overwriting it")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "do not write a header row")
	csv.register(cmd, csvio.DefaultEncoding)
	return cmd
}
