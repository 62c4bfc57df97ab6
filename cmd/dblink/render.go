package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/cloudbox/dblink"
)

// render writes the rows of cur to w in the given format.
// csv and json go through a dataframe, so duplicate column names are refused there.
func render(w io.Writer, cur *dblink.Cursor, format string) error {
	switch format {
	case "csv", "json":
		df, err := cur.AsDataFrame()
		if err != nil {
			return err
		}

		if format == "csv" {
			return df.WriteCSV(w)
		}
		return df.WriteJSON(w)

	default:
		columns, err := cur.Columns()
		if err != nil {
			return err
		}

		data, err := cur.Data()
		if err != nil {
			return err
		}

		writeTable(w, columns, data)
		return nil
	}
}

func writeTable(w io.Writer, columns []string, data [][]any) {
	if len(data) == 0 {
		fmt.Fprintln(w, "(no results)")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	rows := make([][]string, 0, len(data))
	for _, row := range data {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		rows = append(rows, cells)
	}

	table.AppendBulk(rows)
	table.Render()

	if len(rows) == 1 {
		fmt.Fprintln(w, "(1 result)")
	} else {
		fmt.Fprintf(w, "(%d results)\n", len(rows))
	}
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return "0x" + hex.EncodeToString(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

func printAffected(w io.Writer, affected int64) {
	if affected == 1 {
		fmt.Fprintln(w, "(1 row affected)")
	} else {
		fmt.Fprintf(w, "(%d rows affected)\n", affected)
	}
}
