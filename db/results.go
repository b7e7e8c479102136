package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Results iterates the rows a statement produced. Close it when done; the
// statement's timeout keeps running until then.
type Results struct {
	ctx     context.Context
	driver  *Driver
	rows    *sql.Rows
	cancel  context.CancelFunc
	columns []string
	current []any
}

func newResults(ctx context.Context, driver *Driver, rows *sql.Rows, cancel context.CancelFunc) (*Results, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		cancel()
		return nil, driver.diagnostic(err)
	}
	return &Results{ctx: ctx, driver: driver, rows: rows, cancel: cancel, columns: columns}, nil
}

// Columns are the result column names. Statements which return no rows
// have none.
func (r *Results) Columns() []string {
	return r.columns
}

// Next fetches the next row, returning false at the end or on failure
// (see Err).
func (r *Results) Next() bool {
	r.current = nil
	return r.rows.Next()
}

func (r *Results) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return r.driver.diagnostic(err)
	}
	return nil
}

// Values returns the current row as driver values. Text comes back as
// string, blobs as []byte.
func (r *Results) Values() ([]any, error) {
	if r.current != nil {
		return r.current, nil
	}
	values := make([]any, len(r.columns))
	pointers := make([]any, len(values))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := r.Scan(pointers...); err != nil {
		return nil, err
	}
	r.current = values
	return values, nil
}

// Row reads the current row column by column.
func (r *Results) Row() *Row {
	values, err := r.Values()
	return &Row{values: values, err: err, version: r.driver.env.Version()}
}

func (r *Results) Err() error {
	if err := r.rows.Err(); err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		return r.driver.diagnostic(err)
	}
	return nil
}

func (r *Results) Close() error {
	defer r.cancel()
	if err := r.rows.Close(); err != nil {
		return r.driver.diagnostic(err)
	}
	return nil
}

// Row reads the columns of one result row in order. The first failure
// sticks: every later read is skipped and Err reports it.
//
//	var name string
//	var age int64
//	if err := results.Row().String(&name).Int64(&age).Err(); err != nil {
type Row struct {
	values  []any
	column  int
	err     error
	version Version
}

func (row *Row) Err() error {
	return row.err
}

// Ok reports whether every read so far succeeded.
func (row *Row) Ok() bool {
	return row.err == nil
}

func (row *Row) next() (any, bool) {
	if row.err != nil {
		return nil, false
	}
	if row.column >= len(row.values) {
		row.err = &Diagnostic{
			Status:  StatusInvalidColumn.ForVersion(row.version),
			Message: fmt.Sprintf("column %d out of range, row has %d", row.column+1, len(row.values)),
		}
		return nil, false
	}
	value := row.values[row.column]
	row.column++
	return value, true
}

func (row *Row) fail(value any, into string, err error) {
	message := fmt.Sprintf("column %d: cannot convert %T to %s", row.column, value, into)
	if err != nil {
		message += ": " + err.Error()
	}
	row.err = &Diagnostic{Status: StatusConversion.ForVersion(row.version), Message: message, Err: err}
}

// Skip moves past a column.
func (row *Row) Skip() *Row {
	row.next()
	return row
}

// Null reports whether the next column is NULL.
func (row *Row) Null(dst *bool) *Row {
	if value, ok := row.next(); ok {
		*dst = value == nil
	}
	return row
}

// String reads text. NULL reads as "".
func (row *Row) String(dst *string) *Row {
	value, ok := row.next()
	if !ok {
		return row
	}
	switch v := value.(type) {
	case nil:
		*dst = ""
	case string:
		*dst = v
	case []byte:
		*dst = string(v)
	case int64:
		*dst = strconv.FormatInt(v, 10)
	case float64:
		*dst = strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		*dst = strconv.FormatBool(v)
	case time.Time:
		*dst = TimestampOf(v).String()
	default:
		*dst = fmt.Sprint(v)
	}
	return row
}

// Int64 reads an integer. NULL reads as 0.
func (row *Row) Int64(dst *int64) *Row {
	value, ok := row.next()
	if !ok {
		return row
	}
	switch v := value.(type) {
	case nil:
		*dst = 0
	case int64:
		*dst = v
	case float64:
		if v != float64(int64(v)) {
			row.fail(value, "int64", nil)
			return row
		}
		*dst = int64(v)
	case bool:
		*dst = 0
		if v {
			*dst = 1
		}
	case string, []byte:
		n, err := strconv.ParseInt(fmt.Sprintf("%s", v), 10, 64)
		if err != nil {
			row.fail(value, "int64", err)
			return row
		}
		*dst = n
	default:
		row.fail(value, "int64", nil)
	}
	return row
}

// Float64 reads a number. NULL reads as 0.
func (row *Row) Float64(dst *float64) *Row {
	value, ok := row.next()
	if !ok {
		return row
	}
	switch v := value.(type) {
	case nil:
		*dst = 0
	case float64:
		*dst = v
	case int64:
		*dst = float64(v)
	case string, []byte:
		f, err := strconv.ParseFloat(fmt.Sprintf("%s", v), 64)
		if err != nil {
			row.fail(value, "float64", err)
			return row
		}
		*dst = f
	default:
		row.fail(value, "float64", nil)
	}
	return row
}

// Bytes reads a blob. NULL reads as nil.
func (row *Row) Bytes(dst *[]byte) *Row {
	value, ok := row.next()
	if !ok {
		return row
	}
	switch v := value.(type) {
	case nil:
		*dst = nil
	case []byte:
		*dst = v
	case string:
		*dst = []byte(v)
	default:
		row.fail(value, "[]byte", nil)
	}
	return row
}

// temporal reads a column holding either a time.Time, which some drivers
// parse for declared DATE/TIMESTAMP columns, or text.
func (row *Row) temporal(into string) (s string, t *time.Time, ok bool) {
	value, ok := row.next()
	if !ok {
		return "", nil, false
	}
	switch v := value.(type) {
	case time.Time:
		return "", &v, true
	case string:
		return v, nil, true
	case []byte:
		return string(v), nil, true
	}
	row.fail(value, into, nil)
	return "", nil, false
}

func (row *Row) Date(dst *Date) *Row {
	s, t, ok := row.temporal("date")
	if !ok {
		return row
	}
	if t != nil {
		*dst = DateOf(*t)
		return row
	}
	d, err := ParseDate(s)
	if err != nil {
		// Timestamps are accepted, keeping the day.
		ts, tsErr := ParseTimestamp(s)
		if tsErr != nil {
			row.fail(s, "date", err)
			return row
		}
		d = ts.Date
	}
	*dst = d
	return row
}

func (row *Row) Time(dst *Time) *Row {
	s, t, ok := row.temporal("time")
	if !ok {
		return row
	}
	if t != nil {
		*dst = TimeOf(*t)
		return row
	}
	parsed, err := ParseTime(s)
	if err != nil {
		row.fail(s, "time", err)
		return row
	}
	*dst = parsed
	return row
}

func (row *Row) Timestamp(dst *Timestamp) *Row {
	s, t, ok := row.temporal("timestamp")
	if !ok {
		return row
	}
	if t != nil {
		*dst = TimestampOf(*t)
		return row
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		row.fail(s, "timestamp", err)
		return row
	}
	*dst = ts
	return row
}

// Guid reads a GUID stored either as 16 raw bytes or as text.
func (row *Row) Guid(dst *uuid.UUID) *Row {
	value, ok := row.next()
	if !ok {
		return row
	}
	var (
		id  uuid.UUID
		err error
	)
	switch v := value.(type) {
	case []byte:
		if len(v) == 16 {
			id, err = uuid.FromBytes(v)
		} else {
			id, err = uuid.ParseBytes(v)
		}
	case string:
		id, err = uuid.Parse(v)
	default:
		row.fail(value, "guid", nil)
		return row
	}
	if err != nil {
		row.fail(value, "guid", err)
		return row
	}
	*dst = id
	return row
}
