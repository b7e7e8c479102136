package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KoviRobi/sqlxx/cli"
	"github.com/KoviRobi/sqlxx/db"
)

// provider turns connection parameters into a connection string.
type provider struct {
	name   string
	params string
	build  func(args []string) (db.ConnectionString, int, error)
}

var providers = []provider{
	{
		name:   "firebird",
		params: "[filepath username password]",
		build: func(args []string) (db.ConnectionString, int, error) {
			if len(args) < 3 {
				return nil, 0, errors.New("firebird: expecting filepath, username and password.")
			}
			return db.Firebird{Database: args[0], User: args[1], Password: args[2]}, 3, nil
		},
	},
	{
		name:   "sqlite",
		params: "[filepath]",
		build: func(args []string) (db.ConnectionString, int, error) {
			if len(args) < 1 {
				return nil, 0, errors.New("sqlite: expecting filepath.")
			}
			return db.Sqlite{Database: args[0]}, 1, nil
		},
	},
	{
		name:   "mysql",
		params: "[database username password]",
		build: func(args []string) (db.ConnectionString, int, error) {
			if len(args) < 3 {
				return nil, 0, errors.New("mysql: expecting database, username and password.")
			}
			return db.MySQL{Database: args[0], User: args[1], Password: args[2]}, 3, nil
		},
	},
	{
		name:   "odbc",
		params: "[connection-string]",
		build: func(args []string) (db.ConnectionString, int, error) {
			if len(args) < 1 {
				return nil, 0, errors.New("odbc: expecting connection string.")
			}
			if _, err := db.ParseAttributes(args[0]); err != nil {
				return nil, 0, fmt.Errorf("odbc: %w", err)
			}
			return db.Preformatted(args[0]), 1, nil
		},
	},
}

func providerUsage() string {
	var b strings.Builder
	b.WriteString("Providers and their connection-parameters:\n")
	for _, p := range providers {
		fmt.Fprintf(&b, "  %-9s %s\n", p.name, p.params)
	}
	return b.String()
}

// connectionString finds the provider named by args[0] and builds a
// connection string from the parameters after it.
func connectionString(args []string) (db.ConnectionString, error) {
	for _, p := range providers {
		if p.name != args[0] {
			continue
		}
		cs, used, err := p.build(args[1:])
		if err != nil {
			return nil, err
		}
		if extra := args[1+used:]; len(extra) > 0 {
			slog.Warn("ignoring extra connection parameters", "provider", p.name, "extra", extra)
		}
		return cs, nil
	}
	return nil, fmt.Errorf("No such provider: '%s'.", args[0])
}

// connect opens the database named by args. Closing the environment closes
// the connection.
func connect(ctx context.Context, args []string) (*db.Environment, *db.Driver, error) {
	cs, err := connectionString(args)
	if err != nil {
		return nil, nil, err
	}

	env, err := cli.NewEnvironment()
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.NewDriver(ctx, env, cs)
	if err != nil {
		env.Close()
		return nil, nil, err
	}
	return env, conn, nil
}
