// Package migrate applies versioned SQL files to a database, once per component.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/oriser/regroup"
)

// Migrator applies SQL migrations from a filesystem directory to a database.
type Migrator struct {
	db  *sql.DB
	dir string

	re *regroup.ReGroup
}

/* Credits to https://github.com/Boostport/migration */

// New creates a Migrator for the given database and migration directory.
// The schema_migration table is created when missing.
func New(ctx context.Context, db *sql.DB, dir string) (*Migrator, error) {
	var err error

	migr := &Migrator{
		db:  db,
		dir: dir,
	}

	if err = migr.verify(ctx); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	migr.re, err = regroup.Compile(`^(?P<Version>\d+)_?(?P<Name>.+)?\.sql$`)
	if err != nil {
		return nil, fmt.Errorf("regexp: %w", err)
	}

	return migr, nil
}

// Migrate applies all pending migrations found in fsys for the given component.
// It returns the number of migrations applied.
func (m *Migrator) Migrate(ctx context.Context, fsys fs.FS, component string) (int, error) {
	migrations, err := m.parse(fsys)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}

	if len(migrations) == 0 {
		return 0, nil
	}

	versions, err := m.versions(ctx, component)
	if err != nil {
		return 0, fmt.Errorf("versions: %v: %w", component, err)
	}

	applied := 0
	for _, mg := range migrations {
		if versions[mg.Version] {
			continue
		}

		if err := m.exec(ctx, component, mg); err != nil {
			return applied, fmt.Errorf("migrate: %v: %w", mg.Filename, err)
		}
		applied++
	}

	return applied, nil
}
