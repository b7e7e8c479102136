package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEnvironment is returned when an Environment cannot be set up, e.g.
	// for an unsupported ODBC version. There is no connection to read a
	// diagnostic from at that point.
	ErrEnvironment = errors.New("could not allocate SQL/ODBC environment")
	// ErrUnsupportedDriver is returned when this build cannot open a
	// connection string (e.g. MySQL without the odbc build tag).
	ErrUnsupportedDriver = errors.New("unsupported driver")
	// ErrClosed is returned when using a closed Driver.
	ErrClosed = errors.New("connection is closed")
)

// Status is a 5 character SQLSTATE.
type Status string

const (
	StatusNone               Status = ""
	StatusGeneral            Status = "HY000"
	StatusCancelled          Status = "HY008"
	StatusTimeout            Status = "HYT00"
	StatusConversion         Status = "07006"
	StatusInvalidColumn      Status = "07009"
	StatusUnableToConnect    Status = "08001"
	StatusConnectionRejected Status = "08004"
	StatusConstraint         Status = "23000"
	StatusSyntax             Status = "42000"
	StatusTableExists        Status = "42S01"
	StatusTableNotFound      Status = "42S02"
	StatusColumnNotFound     Status = "42S22"
)

// ODBC 2.x used different codes for some of the 3.x states.
var odbc2Statuses = map[Status]Status{
	StatusGeneral:        "S1000",
	StatusInvalidColumn:  "S1002",
	StatusCancelled:      "S1008",
	StatusTimeout:        "S1T00",
	StatusSyntax:         "37000",
	StatusTableExists:    "S0001",
	StatusTableNotFound:  "S0002",
	StatusColumnNotFound: "S0022",
}

// Class is the two character class of the status, e.g. "42".
func (s Status) Class() string {
	if len(s) < 2 {
		return ""
	}
	return string(s[:2])
}

// ForVersion reports s the way an environment of version v expects it.
func (s Status) ForVersion(v Version) Status {
	if v == ODBC2 {
		if old, ok := odbc2Statuses[s]; ok {
			return old
		}
	}
	return s
}

// Diagnostic is the error returned for anything the database rejects.
type Diagnostic struct {
	Status  Status
	Native  int
	Message string
	Err     error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Status, d.Message)
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// StatusOf returns the status of the first Diagnostic in err's chain.
func StatusOf(err error) Status {
	var diag *Diagnostic
	if errors.As(err, &diag) {
		return diag.Status
	}
	return StatusNone
}

// newDiagnostic converts a driver error, leaving nil and existing
// diagnostics alone.
func newDiagnostic(err error, version Version) error {
	if err == nil {
		return nil
	}
	var diag *Diagnostic
	if errors.As(err, &diag) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		diag = &Diagnostic{Status: StatusCancelled, Message: "operation cancelled", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		diag = &Diagnostic{Status: StatusTimeout, Message: "timeout expired", Err: err}
	default:
		diag = diagnose(err)
	}
	diag.Status = diag.Status.ForVersion(version)
	return diag
}

// classify guesses a status from the driver's message, for drivers which
// only return text.
func classify(message string) Status {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "no such table"),
		strings.Contains(lower, "table unknown"),
		strings.Contains(lower, "doesn't exist"):
		return StatusTableNotFound
	case strings.Contains(lower, "already exists"):
		return StatusTableExists
	case strings.Contains(lower, "no such column"),
		strings.Contains(lower, "unknown column"):
		return StatusColumnNotFound
	case strings.Contains(lower, "syntax error"),
		strings.Contains(lower, "incomplete input"):
		return StatusSyntax
	case strings.Contains(lower, "constraint"):
		return StatusConstraint
	case strings.Contains(lower, "database is locked"),
		strings.Contains(lower, "database table is locked"),
		strings.Contains(lower, "busy"):
		return StatusTimeout
	case strings.Contains(lower, "unable to open"):
		return StatusUnableToConnect
	}
	return StatusGeneral
}
