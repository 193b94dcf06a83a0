package command

import (
	"github.com/spf13/cobra"

	"libraryhub/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and the book permissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, logger, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.MigrateSchema(db); err != nil {
			return err
		}
		created, err := database.SeedPermissions(db)
		if err != nil {
			return err
		}
		logger.Debug("permissions_seeded", "created", created)

		success.Fprintf(cmd.OutOrStdout(), "Schema up to date (%d permissions created).\n", created)
		return nil
	},
}
