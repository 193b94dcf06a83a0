package command

import (
	"github.com/spf13/cobra"

	"libraryhub/database"
)

var createGroupsCmd = &cobra.Command{
	Use:   "create_groups",
	Short: "Create default groups (Admins, Editors, Viewers) and assign Book permissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, logger, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close(db)

		seeder, closeCache := newSeedService(db, cfg, logger)
		defer closeCache()

		events, err := seeder.CreateGroups(cmd.Context())
		printEvents(cmd.OutOrStdout(), events)
		return err
	},
}
