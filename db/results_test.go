//go:build !odbc

package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guidText = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

func TestRowReaders(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t, ODBC3)

	results, err := NewDirectStatement(conn, `
	SELECT 'Ann', 42, 2.5, NULL, x'0102',
		'2024-02-29', '13:45:10', '2024-02-29 13:45:10.5',
		'`+guidText+`'`).Query(ctx)
	require.NoError(t, err)
	defer results.Close()
	require.True(t, results.Next())

	var (
		name     string
		age      int64
		score    float64
		null     bool
		blob     []byte
		date     Date
		clock    Time
		stamp    Timestamp
		guid     uuid.UUID
		overflow string
	)
	row := results.Row().
		String(&name).Int64(&age).Float64(&score).Null(&null).Bytes(&blob).
		Date(&date).Time(&clock).Timestamp(&stamp).Guid(&guid)
	require.NoError(t, row.Err())

	assert.Equal(t, "Ann", name)
	assert.Equal(t, int64(42), age)
	assert.Equal(t, 2.5, score)
	assert.True(t, null)
	assert.Equal(t, []byte{1, 2}, blob)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, date)
	assert.Equal(t, Time{Hour: 13, Minute: 45, Second: 10}, clock)
	assert.Equal(t, "2024-02-29 13:45:10.500000000", stamp.String())
	assert.Equal(t, uuid.MustParse(guidText), guid)

	// Reading past the last column fails, and the failure sticks.
	row.String(&overflow)
	assert.Equal(t, StatusInvalidColumn, StatusOf(row.Err()))
	assert.False(t, row.Ok())

	assert.False(t, results.Next())
	require.NoError(t, results.Err())
}

func TestRowConversionFailureSticks(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t, ODBC3)

	results, err := NewDirectStatement(conn, `SELECT 'not a number', 7`).Query(ctx)
	require.NoError(t, err)
	defer results.Close()
	require.True(t, results.Next())

	var (
		n     int64
		after int64
	)
	row := results.Row().Int64(&n).Int64(&after)
	assert.Equal(t, StatusConversion, StatusOf(row.Err()))
	assert.Zero(t, after, "reads after a failure are skipped")
}

func TestRowNullDefaults(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t, ODBC3)

	results, err := NewDirectStatement(conn, `SELECT NULL, NULL, NULL, 1`).Query(ctx)
	require.NoError(t, err)
	defer results.Close()
	require.True(t, results.Next())

	name, n, blob, null := "old", int64(9), []byte("old"), true
	err = results.Row().String(&name).Int64(&n).Bytes(&blob).Null(&null).Err()
	require.NoError(t, err)
	assert.Equal(t, "", name)
	assert.Zero(t, n)
	assert.Nil(t, blob)
	assert.False(t, null)
}

func TestValuesCachesRow(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t, ODBC3)

	results, err := NewDirectStatement(conn, `SELECT 'a', 1 UNION ALL SELECT 'b', 2`).Query(ctx)
	require.NoError(t, err)
	defer results.Close()

	var got []string
	for results.Next() {
		values, err := results.Values()
		require.NoError(t, err)
		again, err := results.Values()
		require.NoError(t, err)
		assert.Equal(t, values, again)

		var s string
		require.NoError(t, results.Row().String(&s).Err())
		got = append(got, s)
	}
	require.NoError(t, results.Err())
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestGuidFromBytes(t *testing.T) {
	id := uuid.MustParse(guidText)
	row := &Row{values: []any{id[:], []byte(guidText), "nope"}}

	var fromRaw, fromText, bad uuid.UUID
	row.Guid(&fromRaw).Guid(&fromText)
	require.NoError(t, row.Err())
	assert.Equal(t, id, fromRaw)
	assert.Equal(t, id, fromText)

	row.Guid(&bad)
	assert.Equal(t, StatusConversion, StatusOf(row.Err()))
}

func TestTemporalFromTime(t *testing.T) {
	instant := time.Date(2023, time.December, 31, 23, 59, 58, 250, time.UTC)
	row := &Row{values: []any{instant, instant, instant, 3.5}}

	var (
		date  Date
		clock Time
		stamp Timestamp
		bad   Date
	)
	row.Date(&date).Time(&clock).Timestamp(&stamp)
	require.NoError(t, row.Err())
	assert.Equal(t, "2023-12-31", date.String())
	assert.Equal(t, "23:59:58", clock.String())
	assert.Equal(t, instant, stamp.In(time.UTC))

	row.Date(&bad)
	assert.Equal(t, StatusConversion, StatusOf(row.Err()))
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{name: "seconds", input: "2024-01-02 03:04:05", expected: "2024-01-02 03:04:05"},
		{name: "fraction", input: "2024-01-02 03:04:05.25", expected: "2024-01-02 03:04:05.250000000"},
		{name: "iso", input: "2024-01-02T03:04:05", expected: "2024-01-02 03:04:05"},
		{name: "zone", input: "2024-01-02T03:04:05Z", expected: "2024-01-02 03:04:05"},
		{name: "date only", input: "2024-01-02", expectError: true},
		{name: "garbage", input: "yesterday", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, ts.String())
			}
		})
	}

	_, err := ParseDate("2023-02-29")
	assert.Error(t, err)
	_, err = ParseTime("25:00:00")
	assert.Error(t, err)

	value, err := Date{Year: 7, Month: time.March, Day: 1}.Value()
	require.NoError(t, err)
	assert.Equal(t, "0007-03-01", value)
}

func TestBindValues(t *testing.T) {
	ctx := context.Background()
	conn := openTest(t, ODBC3)

	execAssert(t, conn, "create table events ( day text, at text, id blob )")
	insert, err := NewPreparedStatement(ctx, conn, "insert into events values (?, ?, ?)")
	require.NoError(t, err)
	defer insert.Close()

	id := uuid.MustParse(guidText)
	day := Date{Year: 2024, Month: time.July, Day: 4}
	at := Time{Hour: 9, Minute: 30}
	require.NoError(t, insert.Bind(day, at, id[:]).Execute(ctx))
	assert.Equal(t, int64(1), insert.RowsAffected())

	results, err := NewDirectStatement(conn, "select day, at, id from events").Query(ctx)
	require.NoError(t, err)
	defer results.Close()
	require.True(t, results.Next())

	var (
		gotDay  Date
		gotAt   Time
		gotGuid uuid.UUID
	)
	require.NoError(t, results.Row().Date(&gotDay).Time(&gotAt).Guid(&gotGuid).Err())
	assert.Equal(t, day, gotDay)
	assert.Equal(t, at, gotAt)
	assert.Equal(t, id, gotGuid)
}

func TestRowDiagnosticsFollowVersion(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		status  Status
	}{
		{name: "odbc 3", version: ODBC3, status: StatusInvalidColumn},
		{name: "odbc 2", version: ODBC2, status: "S1002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			conn := openTest(t, tt.version)

			results, err := NewDirectStatement(conn, "select 1").Query(ctx)
			require.NoError(t, err)
			defer results.Close()
			require.True(t, results.Next())

			var a, b int64
			err = results.Row().Int64(&a).Int64(&b).Err()
			assert.Equal(t, tt.status, StatusOf(err))
			assert.True(t, strings.HasPrefix(err.Error(), string(tt.status)+": "), err.Error())
		})
	}
}
