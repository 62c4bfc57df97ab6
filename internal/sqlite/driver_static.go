//go:build !cgo
// +build !cgo

package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	driverName = "sqlite3"
)

// getDSN returns a DSN string for the SQLite database opened in the given mode.
// Source: https://github.com/nalgeon/redka/blob/017c0b28f7685311c3948b2e6a531012c8092bd3/internal/sqlx/db.go#L173
func getDSN(dbPath string, mode Mode) string {
	dsn := fmt.Sprintf("file:%s", dbPath)

	params := url.Values{}

	// https://sqlite.org/uri.html#uricache
	params.Set("cache", "private")

	// https://sqlite.org/pragma.html#pragma_synchronous
	params.Add("_pragma", "synchronous(NORMAL)")

	// https://sqlite.org/pragma.html#pragma_cache_size
	params.Add("_pragma", "cache_size(-32768)")

	// https://sqlite.org/foreignkeys.html
	params.Add("_pragma", "foreign_keys(ON)")

	// https://sqlite.org/pragma.html#pragma_busy_timeout
	params.Add("_pragma", "busy_timeout(5000)")

	// https://sqlite.org/pragma.html#pragma_temp_store
	params.Add("_pragma", "temp_store(MEMORY)")

	// https://sqlite.org/uri.html#urimode
	params.Set("mode", mode.String())

	if mode.Writable() {
		// https://sqlite.org/wal.html
		params.Add("_pragma", "journal_mode(WAL)")

		// https://sqlite.org/lang_transaction.html
		//goland:noinspection SpellCheckingInspection
		params.Set("_txlock", "immediate")
	} else {
		// https://sqlite.org/pragma.html#pragma_query_only
		params.Add("_pragma", "query_only(ON)")
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
