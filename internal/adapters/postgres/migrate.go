package postgres

import (
	"database/sql"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

const databaseName = "dino_digger"

// Migrate applies every pending migration from sourceUrl, e.g.
// "file://migrations".
func Migrate(db *sql.DB, sourceUrl string) (uint, error) {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return 0, errors.WithMessage(err, "migration driver")
	}
	m, err := migrate.NewWithDatabaseInstance(sourceUrl, databaseName, driver)
	if err != nil {
		return 0, errors.WithMessage(err, "new migrate instance")
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, errors.WithMessage(err, "migrate up")
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, errors.WithMessage(err, "migration version")
	}
	if dirty {
		return version, errors.Errorf("database is dirty at version %d", version)
	}
	return version, nil
}
