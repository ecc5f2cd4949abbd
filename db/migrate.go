package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/cashngo/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// migration is one embedded SQL file; version is the numeric filename prefix
type migration struct {
	version  string
	filename string
}

// listMigrations returns embedded migrations ordered by version (000 first)
func listMigrations() ([]migration, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		out = append(out, migration{version: strings.SplitN(name, "_", 2)[0], filename: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// AppliedVersions returns the migration versions recorded in schema_migrations
func AppliedVersions(db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		// Fresh database: 000 has not run yet
		if strings.Contains(err.Error(), "no such table") {
			return applied, nil
		}
		return nil, errors.Wrap(err, "query schema_migrations")
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, errors.Wrap(err, "scan schema_migrations")
		}
		applied[version] = true
	}
	return applied, errors.Wrap(rows.Err(), "iterate schema_migrations")
}

// Migrate runs all pending migrations, each in its own transaction.
// If logger is provided, logs migration progress; otherwise operates silently.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	all, err := listMigrations()
	if err != nil {
		return err
	}

	applied, err := AppliedVersions(db)
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range all {
		if applied[m.version] {
			continue
		}
		if len(applied) == 0 && pending == 0 && m.version != "000" {
			return errors.Newf("schema_migrations table missing, but first migration is not 000: %s", m.filename)
		}

		if err := applyMigration(db, m); err != nil {
			return err
		}
		pending++

		if logger != nil {
			logger.Infow("Applied migration", "migration", m.filename, "version", m.version)
		}
	}

	if logger != nil {
		logger.Debugw("Migrations complete", "total_migrations", len(all), "applied_now", pending)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	sqlBytes, err := migrations.ReadFile(path.Join(migrationsDir, m.filename))
	if err != nil {
		return errors.Wrapf(err, "read %s", m.filename)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", m.filename)
	}

	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", m.filename)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", m.filename)
	}

	return errors.Wrapf(tx.Commit(), "commit %s", m.filename)
}
