package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
)

// target is what statements run against: the pinned connection, or the
// pending transaction when autocommit is off.
type target interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver is an open connection to a database, made from a
// ConnectionString. All statements on a Driver share one physical
// connection.
type Driver struct {
	env *Environment
	cs  ConnectionString

	db   *sql.DB
	conn *sql.Conn

	mu         sync.Mutex
	tx         *sql.Tx
	autocommit bool
	closed     bool
}

// NewDriver connects to the database described by cs. The environment must
// outlive the returned Driver.
func NewDriver(ctx context.Context, env *Environment, cs ConnectionString) (*Driver, error) {
	slog.Debug("connecting", "connection", cs.Redacted(), "odbc", env.Version())

	db, err := openDB(cs)
	if err != nil {
		return nil, connectDiagnostic(err, env.Version())
	}

	conn, err := db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
		if err != nil {
			conn.Close()
		}
	}
	if err != nil {
		db.Close()
		return nil, connectDiagnostic(err, env.Version())
	}

	driver := &Driver{
		env:        env,
		cs:         cs,
		db:         db,
		conn:       conn,
		autocommit: true,
	}
	env.add(driver)
	return driver, nil
}

// connectDiagnostic reports failures to connect as rejected connections
// unless the driver said something more specific.
func connectDiagnostic(err error, version Version) error {
	err = newDiagnostic(err, version)
	if diag, ok := err.(*Diagnostic); ok && diag.Status == StatusGeneral.ForVersion(version) {
		diag.Status = StatusConnectionRejected
	}
	return err
}

func (d *Driver) ConnectionString() ConnectionString {
	return d.cs
}

func (d *Driver) Dialect() Dialect {
	return d.cs.Dialect()
}

func (d *Driver) Environment() *Environment {
	return d.env
}

func (d *Driver) diagnostic(err error) error {
	return newDiagnostic(err, d.env.Version())
}

// target returns where the next statement runs, starting a transaction if
// autocommit is off and none is pending.
func (d *Driver) target(ctx context.Context) (target, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.autocommit {
		return d.conn, nil
	}
	if d.tx == nil {
		// The transaction outlives the statement that started it.
		tx, err := d.conn.BeginTx(context.WithoutCancel(ctx), nil)
		if err != nil {
			return nil, d.diagnostic(err)
		}
		d.tx = tx
	}
	return d.tx, nil
}

// pending returns the transaction in progress, without starting one.
func (d *Driver) pending() *sql.Tx {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tx
}

// transaction returns the transaction the next statement runs in, starting
// one if autocommit is off. It is nil under autocommit.
func (d *Driver) transaction(ctx context.Context) (*sql.Tx, error) {
	t, err := d.target(ctx)
	if err != nil {
		return nil, err
	}
	tx, _ := t.(*sql.Tx)
	return tx, nil
}

// prepare compiles text in tx, or on the pinned connection when tx is nil.
func (d *Driver) prepare(ctx context.Context, tx *sql.Tx, text string) (*sql.Stmt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	var (
		stmt *sql.Stmt
		err  error
	)
	if tx != nil {
		stmt, err = tx.PrepareContext(ctx, text)
	} else {
		stmt, err = d.conn.PrepareContext(ctx, text)
	}
	if err != nil {
		return nil, d.diagnostic(err)
	}
	return stmt, nil
}

// Autocommit reports whether each statement commits on its own.
func (d *Driver) Autocommit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.autocommit
}

// EnableAutocommit commits any pending transaction and makes every following
// statement commit on its own.
func (d *Driver) EnableAutocommit(ctx context.Context) error {
	err := d.Commit(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.autocommit = true
	return err
}

// DisableAutocommit makes the next statement start a transaction, which
// lasts until Commit or Rollback.
func (d *Driver) DisableAutocommit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autocommit = false
}

// Commit commits the pending transaction. Without one it does nothing.
func (d *Driver) Commit(ctx context.Context) error {
	return d.endTransaction(func(tx *sql.Tx) error { return tx.Commit() })
}

// Rollback discards the pending transaction. Without one it does nothing.
func (d *Driver) Rollback(ctx context.Context) error {
	return d.endTransaction(func(tx *sql.Tx) error { return tx.Rollback() })
}

func (d *Driver) endTransaction(end func(*sql.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.tx == nil {
		return nil
	}
	tx := d.tx
	d.tx = nil
	if err := end(tx); err != nil {
		return d.diagnostic(err)
	}
	return nil
}

// Close rolls back anything pending and disconnects. Closing twice is a
// no-op.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	tx := d.tx
	d.tx = nil
	d.mu.Unlock()

	d.env.remove(d)

	if tx != nil {
		tx.Rollback()
	}
	err := d.conn.Close()
	if dbErr := d.db.Close(); err == nil {
		err = dbErr
	}
	if err != nil {
		return fmt.Errorf("closing %s: %w", d.cs.Redacted(), d.diagnostic(err))
	}
	return nil
}

// Transaction is a scoped transaction. Defer Rollback straight after
// Begin; it does nothing once Commit succeeded.
type Transaction struct {
	driver    *Driver
	committed bool
	restore   bool
}

// Begin starts a transaction on the connection, turning autocommit off
// until the transaction ends.
func (d *Driver) Begin(ctx context.Context) (*Transaction, error) {
	d.mu.Lock()
	restore := d.autocommit
	d.mu.Unlock()

	d.DisableAutocommit()
	// Start it now so that a failure surfaces here.
	if _, err := d.target(ctx); err != nil {
		if restore {
			d.EnableAutocommit(ctx)
		}
		return nil, err
	}
	return &Transaction{driver: d, restore: restore}, nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if err := t.driver.Commit(ctx); err != nil {
		return err
	}
	t.committed = true
	if t.restore {
		return t.driver.EnableAutocommit(ctx)
	}
	return nil
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if t.committed {
		return nil
	}
	t.committed = true
	err := t.driver.Rollback(ctx)
	if t.restore {
		if autoErr := t.driver.EnableAutocommit(ctx); err == nil {
			err = autoErr
		}
	}
	return err
}
