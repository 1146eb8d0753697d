package postgres

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations aplica las migraciones pendientes. Usa las embebidas en el
// binario salvo que migrationsPath apunte a un directorio en disco.
func RunMigrations(dsn, migrationsPath string) error {
	url := migrateURL(dsn)

	var (
		m   *migrate.Migrate
		err error
	)
	if migrationsPath != "" {
		m, err = migrate.New("file://"+migrationsPath, url)
	} else {
		src, ferr := iofs.New(migrationFiles, "migrations")
		if ferr != nil {
			return fmt.Errorf("abrir migraciones embebidas: %w", ferr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", src, url)
	}
	if err != nil {
		return fmt.Errorf("crear migrador: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	return nil
}

// migrateURL convierte el DSN postgres:// al esquema pgx5:// del driver de
// golang-migrate.
func migrateURL(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgresql://"):
		return "pgx5://" + strings.TrimPrefix(dsn, "postgresql://")
	case strings.HasPrefix(dsn, "postgres://"):
		return "pgx5://" + strings.TrimPrefix(dsn, "postgres://")
	}
	return dsn
}
