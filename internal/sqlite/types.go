package sqlite

import (
	"database/sql"
)

type (
	DB struct {
		roDB   *sql.DB
		rwDB   *sql.DB
		dbPath string
	}

	// Mode is the SQLite open mode used in the DSN.
	// https://sqlite.org/uri.html#urimode
	Mode int
)

const (
	ReadOnly Mode = iota
	ReadWrite
	ReadWriteCreate
)

func (m Mode) String() string {
	switch m {
	case ReadWrite:
		return "rw"
	case ReadWriteCreate:
		return "rwc"
	default:
		return "ro"
	}
}

// Writable reports whether connections opened in this mode may change the database.
func (m Mode) Writable() bool {
	return m != ReadOnly
}
