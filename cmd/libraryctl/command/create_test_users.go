package command

import (
	"github.com/spf13/cobra"

	"libraryhub/database"
	"libraryhub/internal/http-api/service"
)

var createTestUsersCmd = &cobra.Command{
	Use:   "create_test_users",
	Short: "Create test users and assign them to Admins, Editors, and Viewers groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, cfg, logger, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close(db)

		seeder, closeCache := newSeedService(db, cfg, logger)
		defer closeCache()

		events, err := seeder.CreateTestUsers(cmd.Context(), service.DefaultTestUsers)
		printEvents(cmd.OutOrStdout(), events)
		return err
	},
}
