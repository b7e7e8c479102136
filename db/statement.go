package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/KoviRobi/sqlxx/limits"
)

// Statement is one operation sent over a connection.
type Statement interface {
	Text() string
	// Execute runs the statement, discarding any rows.
	Execute(ctx context.Context) error
	// Query runs the statement and returns its rows.
	Query(ctx context.Context) (*Results, error)
	// Cancel aborts an execution in progress, from another goroutine.
	Cancel()
}

// statement holds what direct and prepared statements share: the
// connection, the text and the cancel func of the running execution.
type statement struct {
	driver *Driver
	text   string

	mu           sync.Mutex
	cancel       context.CancelFunc
	rowsAffected int64
}

func (s *statement) Text() string {
	return s.text
}

// begin derives the context for one execution, bounded by
// limits.QueryTimeout and cancellable through Cancel.
func (s *statement) begin(ctx context.Context) (context.Context, context.CancelFunc) {
	var cancel context.CancelFunc
	if limits.QueryTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, limits.QueryTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	slog.DebugContext(ctx, "executing statement", "sql", s.text)
	return ctx, cancel
}

// failed converts an execution error, blaming the context when it ended
// first: drivers report an interrupted statement in their own words.
func (s *statement) failed(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Join(ctxErr, err)
	}
	return s.driver.diagnostic(err)
}

func (s *statement) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// RowsAffected is the row count of the last Execute, when the driver
// reports one.
func (s *statement) RowsAffected() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowsAffected
}

func (s *statement) record(result sql.Result) {
	count, err := result.RowsAffected()
	if err != nil {
		count = -1
	}
	s.mu.Lock()
	s.rowsAffected = count
	s.mu.Unlock()
}

// DirectStatement is literal SQL executed as is, without parameters.
type DirectStatement struct {
	statement
}

func NewDirectStatement(driver *Driver, text string) *DirectStatement {
	return &DirectStatement{statement{driver: driver, text: text}}
}

func (s *DirectStatement) Execute(ctx context.Context) error {
	ctx, cancel := s.begin(ctx)
	defer cancel()

	target, err := s.driver.target(ctx)
	if err != nil {
		return err
	}
	result, err := target.ExecContext(ctx, s.text)
	if err != nil {
		return s.failed(ctx, err)
	}
	s.record(result)
	return nil
}

func (s *DirectStatement) Query(ctx context.Context) (*Results, error) {
	ctx, cancel := s.begin(ctx)

	target, err := s.driver.target(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	rows, err := target.QueryContext(ctx, s.text)
	if err != nil {
		err = s.failed(ctx, err)
		cancel()
		return nil, err
	}
	return newResults(ctx, s.driver, rows, cancel)
}

// PreparedStatement is SQL compiled once per transaction (or once for the
// connection under autocommit) and executed with the parameters bound
// since the last execution.
type PreparedStatement struct {
	statement
	stmt *sql.Stmt
	// owner is the transaction stmt was compiled in, nil for the connection.
	owner *sql.Tx
	args  []any
}

func NewPreparedStatement(ctx context.Context, driver *Driver, text string) (*PreparedStatement, error) {
	owner := driver.pending()
	stmt, err := driver.prepare(ctx, owner, text)
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{
		statement: statement{driver: driver, text: text},
		stmt:      stmt,
		owner:     owner,
	}, nil
}

// compiled returns the statement compiled where the next execution runs,
// compiling it again only when that changed since the last execution.
func (s *PreparedStatement) compiled(ctx context.Context) (*sql.Stmt, error) {
	tx, err := s.driver.transaction(ctx)
	if err != nil {
		return nil, err
	}
	if tx == s.owner {
		return s.stmt, nil
	}

	stmt, err := s.driver.prepare(ctx, tx, s.text)
	if err != nil {
		return nil, err
	}
	// Statements compiled in a transaction close with it.
	if s.owner == nil {
		s.stmt.Close()
	}
	s.stmt, s.owner = stmt, tx
	return stmt, nil
}

// Bind appends parameters, in placeholder order.
func (s *PreparedStatement) Bind(values ...any) *PreparedStatement {
	s.args = append(s.args, values...)
	return s
}

// Reset forgets the bound parameters.
func (s *PreparedStatement) Reset() {
	s.args = nil
}

// take returns the bound parameters and resets them.
func (s *PreparedStatement) take() []any {
	args := s.args
	s.Reset()
	return args
}

func (s *PreparedStatement) Execute(ctx context.Context) error {
	args := s.take()
	ctx, cancel := s.begin(ctx)
	defer cancel()

	stmt, err := s.compiled(ctx)
	if err != nil {
		return err
	}
	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return s.failed(ctx, err)
	}
	s.record(result)
	return nil
}

func (s *PreparedStatement) Query(ctx context.Context) (*Results, error) {
	args := s.take()
	ctx, cancel := s.begin(ctx)

	stmt, err := s.compiled(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		err = s.failed(ctx, err)
		cancel()
		return nil, err
	}
	return newResults(ctx, s.driver, rows, cancel)
}

func (s *PreparedStatement) Close() error {
	if err := s.stmt.Close(); err != nil {
		return s.driver.diagnostic(err)
	}
	return nil
}
