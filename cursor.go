package dblink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/cloudbox/dblink/stats"
)

// A Cursor holds the rows of one executed query. Column names and row data are
// read lazily, once; a Cursor is never re-run.
type Cursor struct {
	rows   *sql.Rows
	query  string
	decode DecodeFunc
	stats  *stats.Stats

	columns []string
	types   []string

	data    [][]any
	fetched bool
	err     error
}

func newCursor(rows *sql.Rows, query string, decode DecodeFunc, st *stats.Stats) *Cursor {
	if decode == nil {
		decode = DecodeDefault
	}
	if st == nil {
		st = stats.New()
	}

	return &Cursor{
		rows:   rows,
		query:  query,
		decode: decode,
		stats:  st,
	}
}

// Query returns the query text the cursor was executed with.
func (c *Cursor) Query() string {
	return c.query
}

// Columns returns the lower-cased column names of the result.
func (c *Cursor) Columns() ([]string, error) {
	if c.columns != nil {
		return c.columns, nil
	}

	cts, err := c.rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}

	columns := make([]string, len(cts))
	types := make([]string, len(cts))
	for i, ct := range cts {
		columns[i] = strings.ToLower(ct.Name())
		types[i] = ct.DatabaseTypeName()
	}

	c.columns, c.types = columns, types
	return c.columns, nil
}

// Data fetches every row of the result and closes the underlying rows.
func (c *Cursor) Data() ([][]any, error) {
	if c.fetched {
		return c.data, c.err
	}

	c.data, c.err = c.fetchAll()
	c.fetched = true
	if c.err != nil {
		c.stats.Failed.Add(1)
	}
	return c.data, c.err
}

func (c *Cursor) fetchAll() (data [][]any, err error) {
	// columns are unavailable once the rows are closed
	columns, err := c.Columns()
	if err != nil {
		_ = c.rows.Close()
		return nil, err
	}

	defer func() {
		if cerr := c.rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("rows close: %w", cerr)
		}
	}()

	data = make([][]any, 0)
	for c.rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := c.rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		for i, v := range values {
			decoded, err := c.decode(c.types[i], v)
			if err != nil {
				return nil, fmt.Errorf("decode %v: %w", columns[i], err)
			}
			values[i] = decoded
		}

		data = append(data, values)
	}

	if err := c.rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	c.stats.Rows.Add(int64(len(data)))
	return data, nil
}

// Each calls fn for every fetched row, stopping at the first error.
func (c *Cursor) Each(fn func(row []any) error) error {
	data, err := c.Data()
	if err != nil {
		return err
	}

	for _, row := range data {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// AsDicts returns one Record per row. Results with duplicate column names are refused.
func (c *Cursor) AsDicts() ([]Record, error) {
	columns, err := c.uniqueColumns()
	if err != nil {
		return nil, err
	}

	data, err := c.Data()
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(data))
	for i, row := range data {
		records[i] = newRecord(columns, row)
	}
	return records, nil
}

// AsDataFrame returns the result as a dataframe with one series per column.
// Results with duplicate column names are refused.
func (c *Cursor) AsDataFrame() (dataframe.DataFrame, error) {
	columns, err := c.uniqueColumns()
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	data, err := c.Data()
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	return toDataFrame(columns, data)
}

// Close releases the underlying rows. It is not needed after Data.
func (c *Cursor) Close() error {
	return c.rows.Close()
}

func (c *Cursor) uniqueColumns() ([]string, error) {
	columns, err := c.Columns()
	if err != nil {
		return nil, err
	}

	if err := checkDuplicates(columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func checkDuplicates(columns []string) error {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, ok := seen[col]; ok {
			return fmt.Errorf("%w in your query %v, please rename", ErrDuplicateColumns, columns)
		}
		seen[col] = struct{}{}
	}
	return nil
}

func newRecord(columns []string, row []any) Record {
	r := make(Record, len(columns))
	for i, col := range columns {
		r[col] = row[i]
	}
	return r
}
