// Package inspect prints what the catalog functions know about a database.
package inspect

import (
	"context"
	"fmt"
	"io"

	"github.com/KoviRobi/sqlxx/db"
)

// Run prints the catalogs, schemas, table types and tables of conn, with
// the primary and foreign keys of each table.
func Run(ctx context.Context, conn *db.Driver, w io.Writer) error {
	catalogs, err := conn.Catalogs(ctx)
	if err != nil {
		return fmt.Errorf("listing catalogs: %w", err)
	}
	for _, catalog := range catalogs {
		fmt.Fprintf(w, "Catalog: '%s'.\n", catalog)
	}

	schemas, err := conn.Schemas(ctx)
	if err != nil {
		return fmt.Errorf("listing schemas: %w", err)
	}
	for _, schema := range schemas {
		fmt.Fprintf(w, "Schema: '%s'.\n", schema)
	}

	types, err := conn.TableTypes(ctx)
	if err != nil {
		return fmt.Errorf("listing table types: %w", err)
	}
	for _, tableType := range types {
		fmt.Fprintf(w, "Table type: '%s'.\n", tableType)
	}

	tables, err := conn.Tables(ctx)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	for _, table := range tables {
		fmt.Fprintf(w, "Table: '%s'.\n", table.Name)

		keys, err := conn.PrimaryKeys(ctx, table.Name)
		if err != nil {
			return fmt.Errorf("primary keys of %s: %w", table.Name, err)
		}
		for _, column := range keys {
			fmt.Fprintf(w, "  pk: '%s'.\n", column)
		}

		foreign, err := conn.ForeignKeys(ctx, table.Name)
		if err != nil {
			return fmt.Errorf("foreign keys of %s: %w", table.Name, err)
		}
		for _, key := range foreign {
			fmt.Fprintf(w, "  fk: '%s'@'%s'.\n", key.RefTable, key.RefColumn)
		}
	}
	return nil
}
