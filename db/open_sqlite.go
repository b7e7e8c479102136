//go:build !odbc && !purego

package db

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
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
	return sql.Open("sqlite3", path)
}

func diagnose(err error) *Diagnostic {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return &Diagnostic{Status: classify(err.Error()), Message: err.Error(), Err: err}
	}

	status := classify(sqliteErr.Error())
	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		status = StatusConstraint
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		status = StatusTimeout
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
		status = StatusUnableToConnect
	}
	return &Diagnostic{
		Status:  status,
		Native:  int(sqliteErr.ExtendedCode),
		Message: sqliteErr.Error(),
		Err:     err,
	}
}
