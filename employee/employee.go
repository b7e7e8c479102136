// Package employee creates, lists and drops the Employee table.
package employee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KoviRobi/sqlxx/db"
	"github.com/KoviRobi/sqlxx/styled"
)

var ErrNoSuchAction = errors.New("no such action")

type noSuchAction string

func (name noSuchAction) Error() string {
	return fmt.Sprintf("No such function '%s'.", string(name))
}

func (noSuchAction) Unwrap() error {
	return ErrNoSuchAction
}

type Employee struct {
	Name string
	Age  int64
}

// Options are what the actions need besides the connection.
type Options struct {
	Out io.Writer
	// SeedCount is the number of employees seed inserts.
	SeedCount int
	// Progress, if set, is called after each seeded employee.
	Progress func()
	// MaxRows caps the rows list prints, 0 prints all.
	MaxRows int
}

type Action struct {
	Name string
	Run  func(ctx context.Context, conn *db.Driver, opts Options) error
}

// Actions in the order they are looked up.
var Actions = []Action{
	{Name: "create", Run: func(ctx context.Context, conn *db.Driver, _ Options) error { return Create(ctx, conn) }},
	{Name: "list", Run: list},
	{Name: "drop", Run: func(ctx context.Context, conn *db.Driver, _ Options) error { return Drop(ctx, conn) }},
	{Name: "seed", Run: func(ctx context.Context, conn *db.Driver, opts Options) error {
		return Seed(ctx, conn, opts.SeedCount, opts.Progress)
	}},
}

// Names lists the action names, in lookup order.
func Names() []string {
	names := make([]string, len(Actions))
	for i, action := range Actions {
		names[i] = action.Name
	}
	return names
}

func Lookup(name string) (Action, error) {
	for _, action := range Actions {
		if action.Name == name {
			return action, nil
		}
	}
	return Action{}, noSuchAction(name)
}

// Run looks up the named action and runs it on conn.
func Run(ctx context.Context, name string, conn *db.Driver, opts Options) error {
	action, err := Lookup(name)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "running action", "action", name)
	return action.Run(ctx, conn, opts)
}

func Create(ctx context.Context, conn *db.Driver) error {
	return db.NewDirectStatement(conn, "create table Employee ( name varchar(30), age int )").Execute(ctx)
}

func Drop(ctx context.Context, conn *db.Driver) error {
	return db.NewDirectStatement(conn, "drop table Employee").Execute(ctx)
}

// List reads every employee. A NULL age reads as 0.
func List(ctx context.Context, conn *db.Driver) ([]Employee, error) {
	results, err := db.NewDirectStatement(conn, "select * from Employee").Query(ctx)
	if err != nil {
		return nil, err
	}
	defer results.Close()

	var employees []Employee
	for results.Next() {
		var employee Employee
		if err := results.Row().String(&employee.Name).Int64(&employee.Age).Err(); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, results.Err()
}

func list(ctx context.Context, conn *db.Driver, opts Options) error {
	employees, err := List(ctx, conn)
	if err != nil {
		return err
	}

	tw := styled.NewTableWriter()
	tw.SetOutputMirror(opts.Out)
	tw.AppendHeader(table.Row{"Name", "Age"})
	for i, employee := range employees {
		if opts.MaxRows > 0 && i == opts.MaxRows {
			tw.AppendFooter(table.Row{fmt.Sprintf("first %d of %d", opts.MaxRows, len(employees))})
			break
		}
		tw.AppendRow(table.Row{employee.Name, employee.Age})
	}
	tw.Render()
	return nil
}

// Seed inserts n made up employees in one transaction. The same names come
// out on every run.
func Seed(ctx context.Context, conn *db.Driver, n int, progress func()) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert, err := db.NewPreparedStatement(ctx, conn, "insert into Employee ( name, age ) values ( ?, ? )")
	if err != nil {
		return err
	}
	defer insert.Close()

	faker := gofakeit.New(1)
	for range n {
		name := faker.Name()
		if len(name) > 30 {
			name = name[:30]
		}
		if err := insert.Bind(name, faker.Number(18, 65)).Execute(ctx); err != nil {
			return fmt.Errorf("seeding %q: %w", name, err)
		}
		if progress != nil {
			progress()
		}
	}
	return tx.Commit(ctx)
}
