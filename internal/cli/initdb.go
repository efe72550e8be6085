package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/wwweather/internal/storage/postgres"
)

func (a *App) initDBCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the records table and its indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := connect(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.EnsureSchema(cmd.Context(), pool); err != nil {
				return err
			}
			if reset {
				if err := postgres.Truncate(cmd.Context(), pool); err != nil {
					return err
				}
				a.printf("All weather records deleted.\n")
			}
			a.printf("Database schema is ready.\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "delete every stored record")
	return cmd
}
