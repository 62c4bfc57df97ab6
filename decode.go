package dblink

import (
	"strings"
)

// DecodeFunc converts a value scanned from a column of the given database type name.
type DecodeFunc func(typeName string, value any) (any, error)

// DecodeDefault turns driver byte slices into strings, except for binary
// columns and columns without a declared type, which keep their bytes.
func DecodeDefault(typeName string, value any) (any, error) {
	b, ok := value.([]byte)
	if !ok || IsBinaryType(typeName) {
		return value, nil
	}
	return string(b), nil
}

// IsBinaryType reports whether typeName holds raw bytes.
func IsBinaryType(typeName string) bool {
	switch strings.ToUpper(typeName) {
	case "", "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY", "BIT", "GEOMETRY":
		return true
	default:
		return false
	}
}
