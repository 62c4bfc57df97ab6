// Package dblink wraps database/sql connections and result rows for SQLite and MySQL
// so that query results are easy to turn into records and dataframes.
//
// A Conn is created by a backend package (sqlite, mysql) and hands out a Cursor
// per query. Neither is safe for concurrent use.
package dblink

import (
	"context"
	"database/sql"
	"errors"
)

// Record is one fetched row keyed by lower-cased column name.
type Record map[string]any

// A Pool is the pair of driver handles behind a connection or chunk.
// Backends without a read/write split return the same handle from both.
type Pool interface {
	RO() *sql.DB
	RW() *sql.DB
	Close() error
}

// A Backend opens the driver connection for a Conn and describes how its values
// are decoded and how its interactive client is launched.
type Backend interface {
	// Open connects to the base database. A nil Pool with a nil error means
	// the connection has no base database and only chunks can be queried.
	Open(ctx context.Context) (Pool, error)

	// Decode converts a scanned value of the given database type name.
	Decode(typeName string, value any) (any, error)

	// Command returns the interactive shell client and its arguments.
	Command() (string, []string)
}

// A Chunker is a Backend whose database is split into separately connectable chunks.
type Chunker interface {
	// Chunks maps chunk names to their locations.
	Chunks() (map[string]string, error)

	// OpenChunk connects to the chunk at location.
	OpenChunk(ctx context.Context, location string) (Pool, error)
}

var (
	// ErrPathRequired is returned when a file-backed connection has no path.
	ErrPathRequired = errors.New("path required to create a connection")

	// ErrNoCursor is returned when a query has no database to run against,
	// e.g. the base of a chunk-only connection.
	ErrNoCursor = errors.New("no cursor found")

	// ErrDuplicateColumns is returned when a result has column names that
	// collide after lower-casing and cannot be keyed by name.
	ErrDuplicateColumns = errors.New("cannot have duplicate column names")

	// ErrNotChunked is returned when chunks are requested from a connection
	// that is not chunked.
	ErrNotChunked = errors.New("connection is not chunked")

	// ErrUnknownChunk is returned when a chunk name does not exist.
	ErrUnknownChunk = errors.New("there is no chunk")
)

// singlePool serves reads and writes from one handle.
type singlePool struct {
	db *sql.DB
}

// SinglePool returns a Pool that uses db for both reads and writes.
func SinglePool(db *sql.DB) Pool {
	return singlePool{db: db}
}

func (p singlePool) RO() *sql.DB  { return p.db }
func (p singlePool) RW() *sql.DB  { return p.db }
func (p singlePool) Close() error { return p.db.Close() }
