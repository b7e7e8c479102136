//go:build !odbc

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/employee"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")

	_, err := execute(t, "--db", path, "create")
	require.NoError(t, err)

	_, err = execute(t, "--db", path, "--count", "3", "seed")
	require.NoError(t, err)

	out, err := execute(t, "--db", path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Name")

	_, err = execute(t, "--db", path, "create")
	assert.Equal(t, db.StatusTableExists, db.StatusOf(err))

	_, err = execute(t, "--db", path, "drop")
	require.NoError(t, err)

	_, err = execute(t, "--db", path, "list")
	assert.Equal(t, db.StatusTableNotFound, db.StatusOf(err))
}

func TestUnknownActionDoesNotConnect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "test.sqlite")

	_, err := execute(t, "--db", path, "truncate")
	require.ErrorIs(t, err, employee.ErrNoSuchAction)
	assert.Equal(t, "No such function 'truncate'.", err.Error())
}
