package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies pending schema migrations from the migrations directory.
// A database with no pending migrations is not an error.
func Migrate(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	path := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Allow running from cmd/server during development.
		if _, err := os.Stat("../migrations"); err == nil {
			path = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(path, "mysql", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
