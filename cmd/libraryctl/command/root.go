package command

// root.go defines the root command of libraryctl, the management tool that
// prepares a libraryhub database.

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"libraryhub/database"
	"libraryhub/internal/cache"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "libraryctl",
	Short: "libraryctl - libraryhub management commands",
	Long: `libraryctl prepares a libraryhub database. Typical first run:

  libraryctl migrate
  libraryctl create_groups
  libraryctl create_test_users

Every command is safe to run again. Connection settings come from
DATABASE_DRIVER and DATABASE_URL (or a .env file). When REDIS_URL reaches
the API server's cache, seeding evicts the identities whose grants changed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd, createGroupsCmd, createTestUsersCmd)
}

// openDatabase connects with the environment's database settings. The
// returned logger only reports warnings so the status lines stay readable.
func openDatabase() (*gorm.DB, *config.Config, *slog.Logger, error) {
	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.LogLevel = "warn"
	logger := cfg.NewLogger()

	db, err := database.OpenGorm(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return db, cfg, logger, nil
}

// newSeedService evicts identities from the cache the API server reads, so
// changed grants apply on the next request. Without redis there is nothing
// to evict. The returned func closes the cache connection.
func newSeedService(db *gorm.DB, cfg *config.Config, logger *slog.Logger) (service.SeedService, func()) {
	identityCache, err := cache.NewIdentityCache(cfg.RedisURL, cfg.RedisPassword, cfg.CacheDuration())
	if err != nil {
		logger.Warn("identity_cache_disabled", "error", err)
		identityCache = cache.NewIdentityCacheWithClient(nil, cfg.CacheDuration())
	}

	users := repository.NewUserRepository(db)
	identities := service.NewIdentityService(users, identityCache, logger)
	seeder := service.NewSeedService(repository.NewGroupRepo(db), users, identities, logger)
	return seeder, func() { identityCache.Close() }
}

var (
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
)

func printEvents(w io.Writer, events []service.SeedEvent) {
	for _, e := range events {
		switch e.Level {
		case service.SeedWarning:
			warning.Fprintln(w, e.Message)
		case service.SeedError:
			failure.Fprintln(w, e.Message)
		default:
			success.Fprintln(w, e.Message)
		}
	}
}
