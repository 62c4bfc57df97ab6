package migrate

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/cloudbox/dblink/internal/sqlite"
)

func getMigrator(t *testing.T) (*Migrator, *sqlite.DB) {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.NewDB(ctx, filepath.Join(t.TempDir(), "migrate.db"), true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	mg, err := New(ctx, db.RW(), "migrations")
	if err != nil {
		t.Fatal(err)
	}

	return mg, db
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	mg, db := getMigrator(t)

	fsys := fstest.MapFS{
		"migrations/002_add_email.sql": {Data: []byte("ALTER TABLE users ADD COLUMN email TEXT;")},
		"migrations/001_init.sql":      {Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);")},
		"migrations/README.md":         {Data: []byte("not a migration")},
	}

	applied, err := mg.Migrate(ctx, fsys, "test")
	if err != nil {
		t.Fatal(err)
	}
	if applied != 2 {
		t.Errorf("Expected 2 migrations applied, got %d", applied)
	}

	if _, err := db.RW().ExecContext(ctx, "INSERT INTO users (name, email) VALUES ('a', 'a@example.com')"); err != nil {
		t.Fatalf("Expected migrated schema: %v", err)
	}

	// second run is a no-op
	applied, err = mg.Migrate(ctx, fsys, "test")
	if err != nil {
		t.Fatal(err)
	}
	if applied != 0 {
		t.Errorf("Expected 0 migrations applied on rerun, got %d", applied)
	}

	versions, err := mg.versions(ctx, "test")
	if err != nil {
		t.Fatal(err)
	}
	if !versions[1] || !versions[2] || len(versions) != 2 {
		t.Errorf("Unexpected versions: %v", versions)
	}
}

func TestMigrateFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	mg, _ := getMigrator(t)

	fsys := fstest.MapFS{
		"migrations/001_init.sql":   {Data: []byte("CREATE TABLE things (id INTEGER);")},
		"migrations/002_broken.sql": {Data: []byte("CREATE TABLE nope (;")},
	}

	applied, err := mg.Migrate(ctx, fsys, "test")
	if err == nil {
		t.Fatal("Expected broken migration to fail")
	}
	if applied != 1 {
		t.Errorf("Expected 1 migration applied before failure, got %d", applied)
	}

	versions, err := mg.versions(ctx, "test")
	if err != nil {
		t.Fatal(err)
	}
	if versions[2] {
		t.Error("Expected failed migration to not be recorded")
	}
}

func TestParse(t *testing.T) {
	type Test struct {
		Name     string
		Files    fstest.MapFS
		Versions []int
		Err      bool
	}

	testCases := []Test{
		{
			Name: "Sorted by version",
			Files: fstest.MapFS{
				"migrations/10_c.sql": {Data: []byte("SELECT 1")},
				"migrations/2_b.sql":  {Data: []byte("SELECT 1")},
				"migrations/1.sql":    {Data: []byte("SELECT 1")},
			},
			Versions: []int{1, 2, 10},
		},
		{
			Name: "Invalid filename",
			Files: fstest.MapFS{
				"migrations/init.sql": {Data: []byte("SELECT 1")},
			},
			Err: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			mg, _ := getMigrator(t)

			migrations, err := mg.parse(tc.Files)
			if tc.Err {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if len(migrations) != len(tc.Versions) {
				t.Fatalf("Expected %d migrations, got %d", len(tc.Versions), len(migrations))
			}
			for i, v := range tc.Versions {
				if migrations[i].Version != v {
					t.Errorf("Expected version %d at %d, got %d", v, i, migrations[i].Version)
				}
			}
		})
	}
}
