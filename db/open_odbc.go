//go:build odbc

package db

import (
	"database/sql"
	"errors"

	"github.com/alexbrainman/odbc"
)

const (
	FlagDbDefault     = "Driver={SQLite ODBC Driver};Database=test.sqlite;"
	FlagDbDescription = "ODBC connection string"
)

// FlagConnectionString turns the --db flag into a connection string.
func FlagConnectionString(flag string) ConnectionString {
	return Preformatted(flag)
}

func openDB(cs ConnectionString) (*sql.DB, error) {
	return sql.Open("odbc", cs.String())
}

func diagnose(err error) *Diagnostic {
	var odbcErr *odbc.Error
	if !errors.As(err, &odbcErr) || len(odbcErr.Diag) == 0 {
		return &Diagnostic{Status: classify(err.Error()), Message: err.Error(), Err: err}
	}

	// The first record is the one SQLGetDiagRec reports for record 1.
	record := odbcErr.Diag[0]
	status := Status(record.State)
	if len(status) != 5 {
		status = classify(record.Message)
	}
	return &Diagnostic{
		Status:  status,
		Native:  record.NativeError,
		Message: record.Message,
		Err:     err,
	}
}
