// Package sqlite connects dblink to SQLite database files, including chunked
// databases split over the files of a directory:
//
//	test_db.db   --> base database
//	test_db/
//	  chunk_a.db --> chunk "chunk_a.db"
//	  chunk_b.db --> chunk "chunk_b.db"
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudbox/dblink"
	sqlitedb "github.com/cloudbox/dblink/internal/sqlite"
)

// Config holds configuration for a SQLite connection.
type Config struct {
	Path      string   `yaml:"path"`
	Chunked   bool     `yaml:"chunked"`
	MustExist bool     `yaml:"must-exist"`
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Verbosity string   `yaml:"verbosity"`
}

const dbExt = ".db"

// sidecar files SQLite keeps next to a database are never chunks
var sidecarExcludes = []string{`-wal$`, `-shm$`, `-journal$`}

type backend struct {
	path    string
	chunked bool
	create  bool
	filter  dblink.Filterer
}

// New opens the SQLite database described by c.
func New(ctx context.Context, name string, c Config) (*dblink.Conn, error) {
	if c.Path == "" {
		return nil, dblink.ErrPathRequired
	}

	filter, err := dblink.NewFilterer(c.Include, append(append([]string(nil), sidecarExcludes...), c.Exclude...))
	if err != nil {
		return nil, fmt.Errorf("create filterer: %w", err)
	}

	b := &backend{
		path:    c.Path,
		chunked: c.Chunked,
		create:  !c.MustExist,
		filter:  filter,
	}

	return dblink.Open(ctx, b, dblink.Options{
		Name:      name,
		Backend:   "sqlite",
		Chunked:   c.Chunked,
		Verbosity: c.Verbosity,
	})
}

func (b *backend) Open(ctx context.Context) (dblink.Pool, error) {
	// a chunked path that is not a database file only names the chunk directory
	if b.chunked && !strings.HasSuffix(b.path, dbExt) {
		return nil, nil //nolint:nilnil // no base database
	}

	db, err := sqlitedb.NewDB(ctx, b.path, b.create)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (*backend) Decode(typeName string, value any) (any, error) {
	return dblink.DecodeDefault(typeName, value)
}

func (b *backend) Command() (string, []string) {
	return "sqlite3", []string{b.path}
}

// Chunks maps every database file in the chunk directory to its path.
func (b *backend) Chunks() (map[string]string, error) {
	dir := ChunkDir(b.path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read chunk dir: %w", err)
	}

	chunks := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !b.filter(entry.Name()) {
			continue
		}
		chunks[entry.Name()] = filepath.Join(dir, entry.Name())
	}
	return chunks, nil
}

func (*backend) OpenChunk(ctx context.Context, location string) (dblink.Pool, error) {
	db, err := sqlitedb.NewDB(ctx, location, false)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// ChunkDir returns the directory holding the chunks of the database at path:
// path without its .db extension and trailing slashes.
func ChunkDir(path string) string {
	dir := strings.TrimSuffix(path, dbExt)
	trimmed := strings.TrimRight(dir, "/")
	if trimmed == "" {
		return dir
	}
	return trimmed
}
