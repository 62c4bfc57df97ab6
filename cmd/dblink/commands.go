package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/cloudbox/dblink"
)

// app is bound to every command's Run method.
type app struct {
	ctx context.Context
	cfg config
}

// withConn opens the named connection, runs fn and closes the connection.
func (a *app) withConn(name string, fn func(conn *dblink.Conn) error) error {
	conn, err := a.cfg.open(a.ctx, name)
	if err != nil {
		return fmt.Errorf("open %v: %w", name, err)
	}

	defer func() {
		snap := conn.Stats()
		log.Debug().
			Str("conn", name).
			Int64("queries", snap.Queries).
			Int64("executes", snap.Executes).
			Int64("rows", snap.Rows).
			Int64("failed", snap.Failed).
			Msg("Connection Stats")

		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Str("conn", name).Msg("Connection Close Failed")
		}
	}()

	return fn(conn)
}

func selectCursor(ctx context.Context, conn *dblink.Conn, chunk, query string) (*dblink.Cursor, error) {
	if chunk != "" {
		return conn.SelectChunk(ctx, chunk, query)
	}
	return conn.Select(ctx, query)
}

func execute(ctx context.Context, conn *dblink.Conn, chunk, query string) (int64, error) {
	var err error
	var affected int64

	if chunk != "" {
		res, execErr := conn.ExecuteChunk(ctx, chunk, query)
		if execErr != nil {
			return 0, execErr
		}
		affected, err = res.RowsAffected()
	} else {
		res, execErr := conn.Execute(ctx, query)
		if execErr != nil {
			return 0, execErr
		}
		affected, err = res.RowsAffected()
	}

	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

type queryCmd struct {
	Conn   string `arg:"" help:"Connection name"`
	Query  string `arg:"" help:"SQL query"`
	Chunk  string `help:"Chunk to query instead of the base database"`
	Format string `enum:"table,csv,json" default:"table" help:"Output format (table,csv,json)"`
}

func (c *queryCmd) Run(a *app) error {
	return a.withConn(c.Conn, func(conn *dblink.Conn) error {
		cur, err := selectCursor(a.ctx, conn, c.Chunk, c.Query)
		if err != nil {
			return err
		}
		defer cur.Close()

		return render(os.Stdout, cur, c.Format)
	})
}

type execCmd struct {
	Conn  string `arg:"" help:"Connection name"`
	Query string `arg:"" help:"SQL statement"`
	Chunk string `help:"Chunk to run against instead of the base database"`
}

func (c *execCmd) Run(a *app) error {
	return a.withConn(c.Conn, func(conn *dblink.Conn) error {
		affected, err := execute(a.ctx, conn, c.Chunk, c.Query)
		if err != nil {
			return err
		}

		printAffected(os.Stdout, affected)
		return nil
	})
}

type chunksCmd struct {
	Conn string `arg:"" help:"Connection name"`
}

func (c *chunksCmd) Run(a *app) error {
	return a.withConn(c.Conn, func(conn *dblink.Conn) error {
		names, err := conn.Chunks()
		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	})
}

type shellCmd struct {
	Conn string `arg:"" help:"Connection name"`
}

func (c *shellCmd) Run(a *app) error {
	return a.withConn(c.Conn, func(conn *dblink.Conn) error {
		return conn.Shell(a.ctx)
	})
}

type migrateCmd struct {
	Conn      string `arg:"" help:"Connection name"`
	Dir       string `arg:"" type:"existingdir" help:"Directory of NNN_name.sql files"`
	Component string `default:"schema" help:"Component the migrations are recorded under"`
	Chunks    bool   `help:"Also migrate every chunk"`
}

func (c *migrateCmd) Run(a *app) error {
	fsys := os.DirFS(c.Dir)

	return a.withConn(c.Conn, func(conn *dblink.Conn) error {
		if conn.Pool() != nil {
			applied, err := conn.Migrate(a.ctx, fsys, ".", c.Component)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d applied\n", conn.Name(), applied)
		}

		if !c.Chunks {
			return nil
		}

		names, err := conn.Chunks()
		if err != nil {
			return err
		}

		for _, name := range names {
			applied, err := conn.MigrateChunk(a.ctx, name, fsys, ".", c.Component)
			if err != nil {
				return fmt.Errorf("chunk %v: %w", name, err)
			}
			fmt.Printf("%s/%s: %d applied\n", conn.Name(), name, applied)
		}
		return nil
	})
}
