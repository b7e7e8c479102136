package db

import (
	"context"
	"strings"
)

// Table is one entry of the Tables catalog.
type Table struct {
	Catalog string
	Schema  string
	Name    string
	Type    string
}

// ForeignKey is one column of a foreign key, and the column it refers to.
// RefColumn is empty when the key refers to the primary key implicitly.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Dialect answers catalog queries, which every database spells
// differently.
type Dialect interface {
	Name() string
	Catalogs(ctx context.Context, d *Driver) ([]string, error)
	Schemas(ctx context.Context, d *Driver) ([]string, error)
	TableTypes(ctx context.Context, d *Driver) ([]string, error)
	Tables(ctx context.Context, d *Driver) ([]Table, error)
	PrimaryKeys(ctx context.Context, d *Driver, table string) ([]string, error)
	ForeignKeys(ctx context.Context, d *Driver, table string) ([]ForeignKey, error)
}

func dialectForDriver(driver string) Dialect {
	driver = strings.ToLower(driver)
	switch {
	case strings.Contains(driver, "sqlite"):
		return sqliteDialect{}
	case strings.Contains(driver, "firebird"), strings.Contains(driver, "interbase"):
		return firebirdDialect{}
	}
	return informationSchemaDialect{}
}

func (d *Driver) Catalogs(ctx context.Context) ([]string, error) {
	return d.Dialect().Catalogs(ctx, d)
}

func (d *Driver) Schemas(ctx context.Context) ([]string, error) {
	return d.Dialect().Schemas(ctx, d)
}

func (d *Driver) TableTypes(ctx context.Context) ([]string, error) {
	return d.Dialect().TableTypes(ctx, d)
}

func (d *Driver) Tables(ctx context.Context) ([]Table, error) {
	return d.Dialect().Tables(ctx, d)
}

func (d *Driver) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	return d.Dialect().PrimaryKeys(ctx, d, table)
}

func (d *Driver) ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	return d.Dialect().ForeignKeys(ctx, d, table)
}

// collect runs a catalog query and hands every row to read.
func collect(ctx context.Context, d *Driver, text string, args []any, read func(*Row) error) error {
	var stmt Statement
	if len(args) == 0 {
		stmt = NewDirectStatement(d, text)
	} else {
		prepared, err := NewPreparedStatement(ctx, d, text)
		if err != nil {
			return err
		}
		defer prepared.Close()
		stmt = prepared.Bind(args...)
	}

	results, err := stmt.Query(ctx)
	if err != nil {
		return err
	}
	defer results.Close()

	for results.Next() {
		if err := read(results.Row()); err != nil {
			return err
		}
	}
	return results.Err()
}

// firstColumn returns the first column of every row.
func firstColumn(ctx context.Context, d *Driver, text string, args ...any) ([]string, error) {
	var values []string
	err := collect(ctx, d, text, args, func(row *Row) error {
		var value string
		if err := row.String(&value).Err(); err != nil {
			return err
		}
		values = append(values, value)
		return nil
	})
	return values, err
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Catalogs(ctx context.Context, d *Driver) ([]string, error) {
	var names []string
	err := collect(ctx, d, `PRAGMA database_list`, nil, func(row *Row) error {
		var name string
		if err := row.Skip().String(&name).Err(); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	return names, err
}

// SQLite has no schemas.
func (sqliteDialect) Schemas(context.Context, *Driver) ([]string, error) {
	return nil, nil
}

func (sqliteDialect) TableTypes(context.Context, *Driver) ([]string, error) {
	return []string{"TABLE", "VIEW"}, nil
}

func (sqliteDialect) Tables(ctx context.Context, d *Driver) ([]Table, error) {
	var tables []Table
	err := collect(ctx, d, `
	SELECT name, upper(type) FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name`, nil, func(row *Row) error {
		table := Table{Catalog: "main"}
		if err := row.String(&table.Name).String(&table.Type).Err(); err != nil {
			return err
		}
		tables = append(tables, table)
		return nil
	})
	return tables, err
}

func (sqliteDialect) PrimaryKeys(ctx context.Context, d *Driver, table string) ([]string, error) {
	return firstColumn(ctx, d,
		`SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, table)
}

func (sqliteDialect) ForeignKeys(ctx context.Context, d *Driver, table string) ([]ForeignKey, error) {
	var keys []ForeignKey
	err := collect(ctx, d,
		`SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`,
		[]any{table}, func(row *Row) error {
			var key ForeignKey
			if err := row.String(&key.Column).String(&key.RefTable).String(&key.RefColumn).Err(); err != nil {
				return err
			}
			keys = append(keys, key)
			return nil
		})
	return keys, err
}

// informationSchemaDialect serves MySQL and anything else exposing the
// standard information_schema views. Foreign keys use MySQL's
// referenced_* columns of key_column_usage.
type informationSchemaDialect struct{}

func (informationSchemaDialect) Name() string { return "information_schema" }

const systemSchemas = `('information_schema', 'mysql', 'performance_schema', 'sys', 'pg_catalog')`

func (informationSchemaDialect) Catalogs(ctx context.Context, d *Driver) ([]string, error) {
	return firstColumn(ctx, d, `
	SELECT DISTINCT table_catalog FROM information_schema.tables ORDER BY table_catalog`)
}

func (informationSchemaDialect) Schemas(ctx context.Context, d *Driver) ([]string, error) {
	return firstColumn(ctx, d, `
	SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN `+systemSchemas+`
		ORDER BY schema_name`)
}

func (informationSchemaDialect) TableTypes(ctx context.Context, d *Driver) ([]string, error) {
	return firstColumn(ctx, d, `
	SELECT DISTINCT table_type FROM information_schema.tables ORDER BY table_type`)
}

func (informationSchemaDialect) Tables(ctx context.Context, d *Driver) ([]Table, error) {
	var tables []Table
	err := collect(ctx, d, `
	SELECT table_catalog, table_schema, table_name, table_type FROM information_schema.tables
		WHERE table_schema NOT IN `+systemSchemas+`
		ORDER BY table_schema, table_name`, nil, func(row *Row) error {
		var table Table
		err := row.String(&table.Catalog).String(&table.Schema).
			String(&table.Name).String(&table.Type).Err()
		if err != nil {
			return err
		}
		tables = append(tables, table)
		return nil
	})
	return tables, err
}

func (informationSchemaDialect) PrimaryKeys(ctx context.Context, d *Driver, table string) ([]string, error) {
	return firstColumn(ctx, d, `
	SELECT k.column_name FROM information_schema.table_constraints t
		JOIN information_schema.key_column_usage k
			ON k.constraint_name = t.constraint_name
			AND k.table_schema = t.table_schema
			AND k.table_name = t.table_name
		WHERE t.constraint_type = 'PRIMARY KEY' AND t.table_name = ?
		ORDER BY k.ordinal_position`, table)
}

func (informationSchemaDialect) ForeignKeys(ctx context.Context, d *Driver, table string) ([]ForeignKey, error) {
	var keys []ForeignKey
	err := collect(ctx, d, `
	SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_name = ? AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position`, []any{table}, func(row *Row) error {
		var key ForeignKey
		if err := row.String(&key.Column).String(&key.RefTable).String(&key.RefColumn).Err(); err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	return keys, err
}

// firebirdDialect reads the RDB$ system tables. Firebird names are stored
// blank padded, hence the TRIMs.
type firebirdDialect struct{}

func (firebirdDialect) Name() string { return "firebird" }

// Firebird has neither catalogs nor schemas.
func (firebirdDialect) Catalogs(context.Context, *Driver) ([]string, error) {
	return nil, nil
}

func (firebirdDialect) Schemas(context.Context, *Driver) ([]string, error) {
	return nil, nil
}

func (firebirdDialect) TableTypes(context.Context, *Driver) ([]string, error) {
	return []string{"SYSTEM TABLE", "TABLE", "VIEW"}, nil
}

func (firebirdDialect) Tables(ctx context.Context, d *Driver) ([]Table, error) {
	var tables []Table
	err := collect(ctx, d, `
	SELECT TRIM(RDB$RELATION_NAME),
		CASE WHEN RDB$VIEW_BLR IS NULL THEN 'TABLE' ELSE 'VIEW' END
		FROM RDB$RELATIONS
		WHERE COALESCE(RDB$SYSTEM_FLAG, 0) = 0
		ORDER BY 1`, nil, func(row *Row) error {
		var table Table
		if err := row.String(&table.Name).String(&table.Type).Err(); err != nil {
			return err
		}
		tables = append(tables, table)
		return nil
	})
	return tables, err
}

func (firebirdDialect) PrimaryKeys(ctx context.Context, d *Driver, table string) ([]string, error) {
	return firstColumn(ctx, d, `
	SELECT TRIM(s.RDB$FIELD_NAME) FROM RDB$RELATION_CONSTRAINTS c
		JOIN RDB$INDEX_SEGMENTS s ON s.RDB$INDEX_NAME = c.RDB$INDEX_NAME
		WHERE c.RDB$CONSTRAINT_TYPE = 'PRIMARY KEY' AND c.RDB$RELATION_NAME = ?
		ORDER BY s.RDB$FIELD_POSITION`, table)
}

func (firebirdDialect) ForeignKeys(ctx context.Context, d *Driver, table string) ([]ForeignKey, error) {
	var keys []ForeignKey
	err := collect(ctx, d, `
	SELECT TRIM(s.RDB$FIELD_NAME), TRIM(pc.RDB$RELATION_NAME), TRIM(ps.RDB$FIELD_NAME)
		FROM RDB$RELATION_CONSTRAINTS c
		JOIN RDB$INDEX_SEGMENTS s ON s.RDB$INDEX_NAME = c.RDB$INDEX_NAME
		JOIN RDB$REF_CONSTRAINTS r ON r.RDB$CONSTRAINT_NAME = c.RDB$CONSTRAINT_NAME
		JOIN RDB$RELATION_CONSTRAINTS pc ON pc.RDB$CONSTRAINT_NAME = r.RDB$CONST_NAME_UQ
		JOIN RDB$INDEX_SEGMENTS ps ON ps.RDB$INDEX_NAME = pc.RDB$INDEX_NAME
			AND ps.RDB$FIELD_POSITION = s.RDB$FIELD_POSITION
		WHERE c.RDB$CONSTRAINT_TYPE = 'FOREIGN KEY' AND c.RDB$RELATION_NAME = ?
		ORDER BY c.RDB$CONSTRAINT_NAME, s.RDB$FIELD_POSITION`, []any{table}, func(row *Row) error {
		var key ForeignKey
		if err := row.String(&key.Column).String(&key.RefTable).String(&key.RefColumn).Err(); err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	return keys, err
}
