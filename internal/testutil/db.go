// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"libraryhub/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenMemoryDB opens a private in-memory sqlite database with the full schema
// and seeded permissions.
func OpenMemoryDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := OpenEmptyDB(tb)
	if err := database.Migrate(db, Logger()); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// OpenEmptyDB opens a private in-memory sqlite database with no tables.
func OpenEmptyDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn, Logger())
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql handle: %v", err)
	}
	// a single connection keeps the in-memory database alive and serialises access
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CountQueries counts SELECT statements issued through db from now on.
func CountQueries(tb testing.TB, db *gorm.DB) *int {
	tb.Helper()
	n := new(int)
	name := "testutil:count_" + uuid.NewString()
	if err := db.Callback().Query().Before("gorm:query").Register(name, func(*gorm.DB) {
		*n++
	}); err != nil {
		tb.Fatalf("register callback: %v", err)
	}
	tb.Cleanup(func() { _ = db.Callback().Query().Remove(name) })
	return n
}
