package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cloudbox/dblink"
	sqlitedb "github.com/cloudbox/dblink/internal/sqlite"
)

// createDB creates a database at path holding one row in table t.
func createDB(t *testing.T, path string, value string) {
	t.Helper()

	ctx := context.Background()
	db, err := sqlitedb.NewDB(ctx, path, true)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := db.RW().ExecContext(ctx, "CREATE TABLE t (id INTEGER, value TEXT)"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.RW().ExecContext(ctx, "INSERT INTO t (id, value) VALUES (1, ?)", value); err != nil {
		t.Fatal(err)
	}
}

func selectValue(t *testing.T, cur *dblink.Cursor) string {
	t.Helper()

	records, err := cur.AsDicts()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	value, ok := records[0]["value"].(string)
	if !ok {
		t.Fatalf("Expected string value, got %#v", records[0]["value"])
	}
	return value
}

func TestNewPathRequired(t *testing.T) {
	_, err := New(context.Background(), "empty", Config{})
	if !errors.Is(err, dblink.ErrPathRequired) {
		t.Errorf("Expected ErrPathRequired, got %v", err)
	}
}

func TestNewMustExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	if _, err := New(context.Background(), "missing", Config{Path: path, MustExist: true}); err == nil {
		t.Fatal("Expected error for missing database")
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected database to not be created, got: %v", err)
	}
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "single.db")
	createDB(t, path, "base")

	conn, err := New(ctx, "single", Config{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		conn.Close()
	})

	cur, err := conn.Select(ctx, "SELECT id, value FROM t")
	if err != nil {
		t.Fatal(err)
	}

	if got := selectValue(t, cur); got != "base" {
		t.Errorf("Expected base, got %s", got)
	}

	if _, err := conn.Chunks(); !errors.Is(err, dblink.ErrNotChunked) {
		t.Errorf("Expected ErrNotChunked, got %v", err)
	}

	if _, err := conn.SelectChunk(ctx, "a.db", "SELECT 1"); !errors.Is(err, dblink.ErrNotChunked) {
		t.Errorf("Expected ErrNotChunked, got %v", err)
	}
}

func TestChunked(t *testing.T) {
	type Test struct {
		Name     string
		Path     func(root string) string
		Base     bool
		Config   Config
		Expected []string
	}

	testCases := []Test{
		{
			Name:     "Base database with chunk directory",
			Path:     func(root string) string { return filepath.Join(root, "sales.db") },
			Base:     true,
			Expected: []string{"2023.db", "2024.db"},
		},
		{
			Name:     "Chunk directory only",
			Path:     func(root string) string { return filepath.Join(root, "sales") + "/" },
			Expected: []string{"2023.db", "2024.db"},
		},
		{
			Name:     "Include filter",
			Path:     func(root string) string { return filepath.Join(root, "sales") },
			Config:   Config{Include: []string{`^2024`}},
			Expected: []string{"2024.db"},
		},
		{
			Name:     "Exclude filter",
			Path:     func(root string) string { return filepath.Join(root, "sales") },
			Config:   Config{Exclude: []string{`^2024`}},
			Expected: []string{"2023.db"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			ctx := context.Background()
			root := t.TempDir()
			dir := filepath.Join(root, "sales")

			createDB(t, filepath.Join(root, "sales.db"), "base")
			createDB(t, filepath.Join(dir, "2023.db"), "2023")
			createDB(t, filepath.Join(dir, "2024.db"), "2024")

			// sidecars and directories are not chunks
			if err := os.WriteFile(filepath.Join(dir, "2025.db-journal"), nil, 0o600); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, "2025.db-wal"), nil, 0o600); err != nil {
				t.Fatal(err)
			}
			if err := os.Mkdir(filepath.Join(dir, "archive"), 0o750); err != nil {
				t.Fatal(err)
			}

			cfg := tc.Config
			cfg.Path = tc.Path(root)
			cfg.Chunked = true

			conn, err := New(ctx, "sales", cfg)
			if err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() {
				conn.Close()
			})

			chunks, err := conn.Chunks()
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(chunks, tc.Expected) {
				t.Errorf("Expected chunks %v, got %v", tc.Expected, chunks)
			}

			for _, name := range chunks {
				cur, err := conn.SelectChunk(ctx, name, "SELECT value FROM t")
				if err != nil {
					t.Fatal(err)
				}
				if got := selectValue(t, cur); got+".db" != name {
					t.Errorf("Expected chunk %s to hold its own row, got %s", name, got)
				}
			}

			if _, err := conn.Chunk(ctx, "2022.db"); !errors.Is(err, dblink.ErrUnknownChunk) {
				t.Errorf("Expected ErrUnknownChunk, got %v", err)
			}

			cur, err := conn.Select(ctx, "SELECT value FROM t")
			if !tc.Base {
				if !errors.Is(err, dblink.ErrNoCursor) {
					t.Errorf("Expected ErrNoCursor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := selectValue(t, cur); got != "base" {
				t.Errorf("Expected base, got %s", got)
			}
		})
	}
}

func TestChunkOpenedOnce(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	createDB(t, filepath.Join(root, "logs", "a.db"), "a")

	conn, err := New(ctx, "logs", Config{Path: filepath.Join(root, "logs"), Chunked: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		conn.Close()
	})

	first, err := conn.Chunk(ctx, "a.db")
	if err != nil {
		t.Fatal(err)
	}

	second, err := conn.Chunk(ctx, "a.db")
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("Expected chunk connection to be reused")
	}

	if _, err := conn.ExecuteChunk(ctx, "a.db", "INSERT INTO t (id, value) VALUES (2, 'b')"); err != nil {
		t.Fatal(err)
	}

	cur, err := conn.SelectChunk(ctx, "a.db", "SELECT COUNT(*) AS n FROM t")
	if err != nil {
		t.Fatal(err)
	}
	data, err := cur.Data()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := data[0][0].(int64); n != 2 {
		t.Errorf("Expected 2 rows in chunk, got %#v", data[0][0])
	}
}

func TestCommand(t *testing.T) {
	name, args := (&backend{path: "/data/test.db"}).Command()
	if name != "sqlite3" {
		t.Errorf("Expected sqlite3, got %s", name)
	}
	if !reflect.DeepEqual(args, []string{"/data/test.db"}) {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestChunkDir(t *testing.T) {
	type Test struct {
		Name     string
		Path     string
		Expected string
	}

	testCases := []Test{
		{Name: "Database file", Path: "/path/test_db.db", Expected: "/path/test_db"},
		{Name: "Directory", Path: "/path/test_db", Expected: "/path/test_db"},
		{Name: "Trailing slash", Path: "/path/test_db//", Expected: "/path/test_db"},
		{Name: "Only the extension is removed", Path: "/path/dbdb.db", Expected: "/path/dbdb"},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			if got := ChunkDir(tc.Path); got != tc.Expected {
				t.Errorf("%s does not equal %s", got, tc.Expected)
			}
		})
	}
}
