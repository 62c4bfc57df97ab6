//go:build cgo
// +build cgo

package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/mattn/go-sqlite3"
)

const (
	driverName = "sqlite3dblink"
)

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, query := range []string{
				"PRAGMA temp_store=MEMORY",
				"PRAGMA mmap_size=268435456",
			} {
				if _, err := conn.Exec(query, nil); err != nil {
					return fmt.Errorf("failed to execute query %q: %w", query, err)
				}
			}
			return nil
		},
	})
}

// getDSN returns a DSN string for the SQLite database opened in the given mode.
// Source: https://github.com/nalgeon/redka/blob/017c0b28f7685311c3948b2e6a531012c8092bd3/internal/sqlx/db.go#L173
func getDSN(dbPath string, mode Mode) string {
	dsn := fmt.Sprintf("file:%s", dbPath)

	params := url.Values{}

	// sql.DB is concurrent-safe, so we don't need SQLite mutexes.
	params.Set("_mutex", "no")

	// https://sqlite.org/uri.html#uricache
	params.Set("cache", "private")

	// https://sqlite.org/pragma.html#pragma_synchronous
	params.Set("_synchronous", "NORMAL")

	// https://sqlite.org/pragma.html#pragma_cache_size
	params.Set("_cache_size", "-32768")

	// https://sqlite.org/foreignkeys.html
	params.Set("_foreign_keys", "ON")

	// https://sqlite.org/pragma.html#pragma_busy_timeout
	params.Set("_busy_timeout", "5000")

	// https://sqlite.org/uri.html#urimode
	params.Set("mode", mode.String())

	if mode.Writable() {
		// https://sqlite.org/wal.html
		params.Set("_journal_mode", "WAL")

		// https://sqlite.org/lang_transaction.html
		//goland:noinspection SpellCheckingInspection
		params.Set("_txlock", "immediate")
	} else {
		// https://sqlite.org/pragma.html#pragma_query_only
		params.Set("_query_only", "ON")
	}

	return dsn + "?" + params.Encode()
}

// OpenDB opens a database/sql handle on dbPath. No connection is made until first use.
func OpenDB(dbPath string, mode Mode) (*sql.DB, error) {
	db, err := sql.Open(driverName, getDSN(dbPath, mode))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	return db, nil
}
