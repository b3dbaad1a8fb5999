package config

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Taichi-iskw/lingopad/migrations"
)

// Direction selects which way migrations run
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigratePostgres applies the embedded PostgreSQL migrations
func MigratePostgres(dbConfig *DatabaseConfig, direction Direction) error {
	src, err := iofs.New(migrations.Postgres, "postgres")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dbConfig.MigrationURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	return run(m, direction)
}

// MigrateSQLite applies the embedded SQLite migrations on an open database
func MigrateSQLite(db *sql.DB, direction Direction) error {
	src, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	// m.Close would also close db, which the caller still owns
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return run(m, direction)
}

// Migrate applies migrations for whichever backend the config selects
func Migrate(dbConfig *DatabaseConfig, db *sql.DB, direction Direction) error {
	if dbConfig.IsSQLite() {
		if db == nil {
			return fmt.Errorf("sqlite migrations need an open database")
		}
		return MigrateSQLite(db, direction)
	}
	return MigratePostgres(dbConfig, direction)
}

func run(m *migrate.Migrate, direction Direction) error {
	var err error
	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction: %s", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations %s: %w", direction, err)
	}
	return nil
}
