//go:build !odbc && purego

package db

import (
	"database/sql"
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	FlagDbDefault     = "test.sqlite"
	FlagDbDescription = "path to sqlite3 file to create/use"
)

// FlagConnectionString turns the --db flag into a connection string.
func FlagConnectionString(flag string) ConnectionString {
	return Sqlite{Database: flag}
}

func openDB(cs ConnectionString) (*sql.DB, error) {
	path, err := sqlitePath(cs)
	if err != nil {
		return nil, err
	}
	return sql.Open("sqlite", path)
}

func diagnose(err error) *Diagnostic {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return &Diagnostic{Status: classify(err.Error()), Message: err.Error(), Err: err}
	}

	status := classify(sqliteErr.Error())
	// Extended codes keep the primary code in the low byte.
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		status = StatusConstraint
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		status = StatusTimeout
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
		status = StatusUnableToConnect
	}
	return &Diagnostic{
		Status:  status,
		Native:  sqliteErr.Code(),
		Message: sqliteErr.Error(),
		Err:     err,
	}
}
