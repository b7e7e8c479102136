package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoviRobi/sqlxx/db"
)

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected db.ConnectionString
		errText  string
	}{
		{
			name:     "sqlite",
			args:     []string{"sqlite", "test.sqlite"},
			expected: db.Sqlite{Database: "test.sqlite"},
		},
		{
			name:     "sqlite with extra parameters",
			args:     []string{"sqlite", "test.sqlite", "ignored"},
			expected: db.Sqlite{Database: "test.sqlite"},
		},
		{
			name:     "mysql",
			args:     []string{"mysql", "shop", "bob", "secret"},
			expected: db.MySQL{Database: "shop", User: "bob", Password: "secret"},
		},
		{
			name:     "firebird",
			args:     []string{"firebird", "shop.fdb", "SYSDBA", "masterkey"},
			expected: db.Firebird{Database: "shop.fdb", User: "SYSDBA", Password: "masterkey"},
		},
		{
			name:     "odbc",
			args:     []string{"odbc", "DSN=shop;UID=bob"},
			expected: db.Preformatted("DSN=shop;UID=bob"),
		},
		{name: "sqlite without path", args: []string{"sqlite"}, errText: "sqlite: expecting filepath."},
		{name: "mysql short", args: []string{"mysql", "shop"}, errText: "mysql: expecting database, username and password."},
		{name: "firebird short", args: []string{"firebird"}, errText: "firebird: expecting filepath, username and password."},
		{name: "odbc malformed", args: []string{"odbc", "Driver={SQLite"}, errText: "odbc: "},
		{name: "unknown", args: []string{"oracle", "x"}, errText: "No such provider: 'oracle'."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := connectionString(tt.args)
			if tt.errText != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cs)
		})
	}
}

func TestProviderUsage(t *testing.T) {
	usage := providerUsage()
	for _, p := range providers {
		assert.Contains(t, usage, p.name)
		assert.Contains(t, usage, p.params)
	}
}
