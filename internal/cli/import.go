package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/wwweather/internal/core"
	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/storage/memory"
)

func (a *App) importCmd() *cobra.Command {
	var (
		req         core.ImportRequest
		onDuplicate string
		dryRun      bool
		csv         csvFlags
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import weather records from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("block-size") {
				req.BlockSize = a.cfg.Import.BlockSize
			}
			if onDuplicate == "" {
				onDuplicate = a.cfg.Import.OnDuplicate
			}
			d, err := storage.ParseOnDuplicate(onDuplicate)
			if err != nil {
				return err
			}
			req.OnDuplicate = d

			opts, err := a.csvOptions(csv)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input file: %w", err)
			}
			defer f.Close()
			if info, err := f.Stat(); err == nil {
				opts.Size = info.Size()
			}

			loader, err := csvio.NewLoader(f, opts)
			if err != nil {
				return err
			}

			run := func(factory storage.Factory) error {
				sum, err := core.Import(cmd.Context(), factory, loader, req)
				if err != nil {
					a.printf("Import stopped: %d of %d records imported.\n", sum.Imported, sum.Attempted)
					return err
				}
				if dryRun {
					a.printf("Dry run complete: %d of %d records would be imported.\n", sum.Imported, sum.Attempted)
					return nil
				}
				a.printf("Import complete: %d of %d records imported.\n", sum.Imported, sum.Attempted)
				return nil
			}
			if dryRun {
				return run(memory.NewStore().Factory())
			}
			return a.withStore(cmd.Context(), run)
		},
	}

	cmd.Flags().IntVar(&req.BlockSize, "block-size", core.DefaultBlockSize, "records committed together (0 for the whole file in one block)")
	cmd.Flags().StringVar(&onDuplicate, "on-duplicate", "", "raise, update or ignore (default from IMPORT_ON_DUPLICATE)")
	cmd.Flags().IntVar(&req.Limit, "limit", 0, "import at most this many records (0 for all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "read and check the file without touching the database")
	cmd.Flags().IntVar(&req.Offset, "offset", 0, "skip this many data rows first")
	csv.register(cmd, a.cfg.Import.Encoding)
	return cmd
}
