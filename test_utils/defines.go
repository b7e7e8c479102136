package test_utils

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/limits"
)

const (
	CreateEmployee = "create table Employee ( name varchar(30), age int )"
	DropEmployee   = "drop table Employee"
)

// CommonInit opens an empty in-memory database named after the test,
// closed when the test ends.
func CommonInit(t *testing.T) *db.Driver {
	t.Helper()
	limits.QueryTimeout = 5 * time.Second
	limits.MaxRows = 1000

	env, err := db.NewEnvironment(db.ODBC3)
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })

	name := strings.ReplaceAll(t.Name(), "/", "_")
	cs := db.Sqlite{Database: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)}
	conn, err := db.NewDriver(context.Background(), env, cs)
	require.NoError(t, err)

	tables, err := conn.Tables(context.Background())
	require.NoError(t, err)
	require.Empty(t, tables, "Expected DB to be empty at start")

	return conn
}

func ExecAssert(t *testing.T, conn *db.Driver, query string) {
	t.Helper()
	err := db.NewDirectStatement(conn, query).Execute(context.Background())
	require.NoError(t, err, "Query:\n> %s", strings.ReplaceAll(query, "\n", "\n> "))
}

// TableNames lists the tables of conn.
func TableNames(t *testing.T, conn *db.Driver) []string {
	t.Helper()
	tables, err := conn.Tables(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, table.Name)
	}
	return names
}
