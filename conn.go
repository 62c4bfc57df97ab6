package dblink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"

	"github.com/cloudbox/dblink/migrate"
	"github.com/cloudbox/dblink/stats"
)

// Options configure a Conn independently of its backend.
type Options struct {
	// Name identifies the connection in logs.
	Name string

	// Backend is the backend name used in logs, e.g. "sqlite".
	Backend string

	// Chunked marks the database as split into chunks. The backend must implement Chunker.
	Chunked bool

	Verbosity string
}

// A Conn is a database connection, optionally split into chunks that are
// connected on first use.
type Conn struct {
	name    string
	backend Backend
	pool    Pool
	chunked bool

	// chunk name -> chunk, listed on first use
	chunks map[string]*chunk

	stats *stats.Stats
	log   zerolog.Logger
}

type chunk struct {
	location string
	pool     Pool
}

// Open connects to the database of backend b.
func Open(ctx context.Context, b Backend, opts Options) (*Conn, error) {
	if opts.Chunked {
		if _, ok := b.(Chunker); !ok {
			return nil, fmt.Errorf("%v: %w", opts.Backend, ErrNotChunked)
		}
	}

	pool, err := b.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	c := &Conn{
		name:    opts.Name,
		backend: b,
		pool:    pool,
		chunked: opts.Chunked,
		stats:   stats.New(),
		log:     connLogger(opts.Verbosity, opts.Backend, opts.Name),
	}

	c.log.Debug().
		Bool("chunked", c.chunked).
		Bool("base", pool != nil).
		Msg("Connection Opened")

	return c, nil
}

// Name returns the configured connection name.
func (c *Conn) Name() string {
	return c.name
}

// Pool returns the handles of the base database, or nil for a chunk-only connection.
func (c *Conn) Pool() Pool {
	return c.pool
}

// Chunked reports whether the connection is split into chunks.
func (c *Conn) Chunked() bool {
	return c.chunked
}

// Stats returns the activity counters of the connection and its chunks.
func (c *Conn) Stats() stats.Snapshot {
	return c.stats.Snapshot()
}

// Select runs query on the base database and returns a Cursor over its rows.
func (c *Conn) Select(ctx context.Context, query string, args ...any) (*Cursor, error) {
	if c.pool == nil {
		return nil, ErrNoCursor
	}
	return c.selectOn(ctx, c.pool, query, args...)
}

// SelectChunk runs query on the named chunk, connecting to it when needed.
func (c *Conn) SelectChunk(ctx context.Context, name, query string, args ...any) (*Cursor, error) {
	pool, err := c.Chunk(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.selectOn(ctx, pool, query, args...)
}

// SelectDataFrame runs query on the base database and returns every row as a dataframe.
func (c *Conn) SelectDataFrame(ctx context.Context, query string, args ...any) (dataframe.DataFrame, error) {
	cur, err := c.Select(ctx, query, args...)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer cur.Close()

	return cur.AsDataFrame()
}

func (c *Conn) selectOn(ctx context.Context, pool Pool, query string, args ...any) (*Cursor, error) {
	c.log.Trace().Str("query", query).Msg("Query Running")

	rows, err := pool.RO().QueryContext(ctx, query, args...)
	c.stats.Record(true, err)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return newCursor(rows, query, c.backend.Decode, c.stats), nil
}

// Execute runs a statement that returns no rows on the base database.
func (c *Conn) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.pool == nil {
		return nil, ErrNoCursor
	}
	return c.executeOn(ctx, c.pool, query, args...)
}

// ExecuteChunk runs a statement that returns no rows on the named chunk.
func (c *Conn) ExecuteChunk(ctx context.Context, name, query string, args ...any) (sql.Result, error) {
	pool, err := c.Chunk(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.executeOn(ctx, pool, query, args...)
}

func (c *Conn) executeOn(ctx context.Context, pool Pool, query string, args ...any) (sql.Result, error) {
	c.log.Trace().Str("query", query).Msg("Statement Running")

	res, err := pool.RW().ExecContext(ctx, query, args...)
	c.stats.Record(false, err)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return res, nil
}

// Chunks returns the sorted names of all chunks.
func (c *Conn) Chunks() ([]string, error) {
	chunks, err := c.chunkMap()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(chunks))
	for name := range chunks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Chunk returns the handles of the named chunk, connecting to it on first use.
func (c *Conn) Chunk(ctx context.Context, name string) (Pool, error) {
	chunks, err := c.chunkMap()
	if err != nil {
		return nil, err
	}

	ch, ok := chunks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownChunk, name)
	}

	if ch.pool != nil {
		return ch.pool, nil
	}

	pool, err := c.backend.(Chunker).OpenChunk(ctx, ch.location)
	if err != nil {
		return nil, fmt.Errorf("open chunk %v: %w", name, err)
	}
	ch.pool = pool

	c.log.Debug().
		Str("chunk", name).
		Str("location", ch.location).
		Msg("Chunk Opened")

	return pool, nil
}

func (c *Conn) chunkMap() (map[string]*chunk, error) {
	if !c.chunked {
		return nil, ErrNotChunked
	}

	if c.chunks != nil {
		return c.chunks, nil
	}

	locations, err := c.backend.(Chunker).Chunks()
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	chunks := make(map[string]*chunk, len(locations))
	for name, location := range locations {
		chunks[name] = &chunk{location: location}
	}
	c.chunks = chunks

	c.log.Debug().Int("chunks", len(chunks)).Msg("Chunks Listed")
	return c.chunks, nil
}

// Shell launches the interactive client of the backend on the terminal.
func (c *Conn) Shell(ctx context.Context) error {
	name, args := c.backend.Command()
	c.log.Debug().Str("command", name).Msg("Shell Starting")
	return RunCommand(ctx, name, args...)
}

// Migrate applies the versioned .sql files in dir of fsys to the base database.
// It returns the number of migrations applied.
func (c *Conn) Migrate(ctx context.Context, fsys fs.FS, dir, component string) (int, error) {
	if c.pool == nil {
		return 0, ErrNoCursor
	}
	return c.migrateOn(ctx, c.pool, fsys, dir, component)
}

// MigrateChunk applies the versioned .sql files in dir of fsys to the named chunk.
func (c *Conn) MigrateChunk(ctx context.Context, name string, fsys fs.FS, dir, component string) (int, error) {
	pool, err := c.Chunk(ctx, name)
	if err != nil {
		return 0, err
	}
	return c.migrateOn(ctx, pool, fsys, dir, component)
}

func (c *Conn) migrateOn(ctx context.Context, pool Pool, fsys fs.FS, dir, component string) (int, error) {
	mg, err := migrate.New(ctx, pool.RW(), dir)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}

	applied, err := mg.Migrate(ctx, fsys, component)
	if err != nil {
		return applied, fmt.Errorf("migrate: %w", err)
	}

	if applied > 0 {
		c.log.Info().
			Str("component", component).
			Int("applied", applied).
			Msg("Migrations Applied")
	}
	return applied, nil
}

// Close closes the base database and every connected chunk.
func (c *Conn) Close() error {
	var errs []error
	if c.pool != nil {
		if err := c.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
	}

	for name, ch := range c.chunks {
		if ch.pool == nil {
			continue
		}
		if err := ch.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chunk %v: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
