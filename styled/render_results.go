package styled

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KoviRobi/sqlxx/db"
)

// RenderResults writes results as a table, stopping after maxRows rows
// (0 means all of them). It returns the number of rows written.
func RenderResults(w io.Writer, results *db.Results, maxRows int) (int, error) {
	tw := NewTableWriter()
	tw.SetOutputMirror(w)

	header := table.Row{}
	for _, column := range results.Columns() {
		header = append(header, column)
	}
	tw.AppendHeader(header)

	count, truncated := 0, false
	for results.Next() {
		if maxRows > 0 && count == maxRows {
			truncated = true
			break
		}
		values, err := results.Values()
		if err != nil {
			return count, err
		}
		row := make(table.Row, len(values))
		for i, value := range values {
			row[i] = Cell(value)
		}
		tw.AppendRow(row)
		count++
	}
	if err := results.Err(); err != nil {
		return count, err
	}

	if truncated {
		tw.AppendFooter(table.Row{fmt.Sprintf("first %d rows", count)})
	}
	tw.Render()
	return count, nil
}

// Cell formats a driver value for display.
func Cell(value any) string {
	switch v := value.(type) {
	case nil:
		return DimmedColor().Sprint("NULL")
	case []byte:
		return "x'" + hex.EncodeToString(v) + "'"
	case time.Time:
		return db.TimestampOf(v).String()
	}
	return fmt.Sprint(value)
}
