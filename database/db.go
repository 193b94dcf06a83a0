package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"libraryhub/internal/authz"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // registers the pure-go "sqlite" driver
)

// OpenGorm opens the database named by DATABASE_DRIVER / DATABASE_URL and
// verifies the connection.
func OpenGorm(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = OpenPostgres(cfg.DatabaseURL, logger)
	case "sqlite":
		db, err = OpenSQLite(cfg.DatabaseURL, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("database_connected", "driver", cfg.DatabaseDriver)
	return db, nil
}

// OpenPostgres builds the *sql.DB through pgx's stdlib adapter and hands it to gorm.
func OpenPostgres(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	pgCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if pgCfg.RuntimeParams == nil {
		pgCfg.RuntimeParams = map[string]string{}
	}
	if _, ok := pgCfg.RuntimeParams["application_name"]; !ok {
		pgCfg.RuntimeParams["application_name"] = "libraryhub"
	}

	sqlDB := stdlib.OpenDB(*pgCfg)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(sqlDB); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, err
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(logger))
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// OpenSQLite opens a sqlite database through modernc.org/sqlite. Foreign keys
// are switched on for every connection.
func OpenSQLite(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	if !strings.Contains(dsn, "foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), gormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := ping(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// gormConfig sends gorm's slow-query and error lines through logger at warn
// level, so LOG_LEVEL and LOG_FORMAT apply to them too.
func gormConfig(logger *slog.Logger) *gorm.Config {
	if logger == nil {
		logger = slog.Default()
	}
	return &gorm.Config{
		Logger: gormlogger.New(slog.NewLogLogger(logger.Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true, // not-found is a normal outcome for lookups
		}),
	}
}

func ping(sqlDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the schema and seeds the book permissions.
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := MigrateSchema(db); err != nil {
		return err
	}
	created, err := SeedPermissions(db)
	if err != nil {
		return err
	}
	logger.Info("database_migrated", "permissions_created", created)
	return nil
}

// MigrateSchema creates or updates every table without seeding any rows.
func MigrateSchema(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Library{}, "Books", &models.LibraryBook{}); err != nil {
		return fmt.Errorf("setup library_books join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.Book{}, "Libraries", &models.LibraryBook{}); err != nil {
		return fmt.Errorf("setup library_books join table: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Author{},
		&models.Book{},
		&models.Library{},
		&models.LibraryBook{},
		&models.Librarian{},
		&models.Permission{},
		&models.Group{},
		&models.User{},
		&models.UserProfile{},
		&models.RefreshToken{},
	); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// SeedPermissions inserts the book permissions that do not exist yet and
// returns how many were created.
func SeedPermissions(db *gorm.DB) (int, error) {
	created := 0
	for _, p := range authz.AllPermissions {
		var existing models.Permission
		err := db.Where("codename = ?", string(p)).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("seed permission %s: %w", p, err)
		}
		if err := db.Create(&models.Permission{Codename: string(p), Name: p.Label()}).Error; err != nil {
			return created, fmt.Errorf("seed permission %s: %w", p, err)
		}
		created++
	}
	return created, nil
}

// IsUniqueViolation reports whether err is a unique constraint failure on
// either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
