// Package driveradapter wires driver.Connection to database/sql,
// using the concrete wire-protocol drivers the pack otherwise only
// vendored transitively: go-sql-driver/mysql, lib/pq, and
// modernc.org/sqlite. Each Open function returns a driver.Connection
// the compiler/exec/txn layers can use without ever importing
// database/sql directly.
package driveradapter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/omniql-engine/relq/driver"
)

// Kind names the wire-protocol driver backing a Connection.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
)

var sqlDriverName = map[Kind]string{
	KindSQLite:   "sqlite",
	KindPostgres: "postgres",
	KindMySQL:    "mysql",
}

// sqlConnection adapts a *sql.DB to driver.Connection. A *sql.DB
// already pools internally; relq's own driver.Pool manages these at
// a coarser granularity (one sqlConnection per logical relq
// connection), matching how the driver.Pool contract expects a single
// Connection per acquisition rather than a shared handle.
type sqlConnection struct {
	kind Kind
	db   *sql.DB
}

// Open establishes a *sql.DB-backed Connection for the given kind and
// DSN.
func Open(ctx context.Context, kind Kind, dsn string) (driver.Connection, error) {
	driverName, ok := sqlDriverName[kind]
	if !ok {
		return nil, fmt.Errorf("driveradapter: unknown kind %q", kind)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &sqlConnection{kind: kind, db: db}, nil
}

func (c *sqlConnection) ExecuteSQL(ctx context.Context, query string, params []any) (driver.RawRows, error) {
	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) (driver.RawRows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out driver.RawRows
	for rows.Next() {
		values := make([]any, len(cols))
		scanTargets := make([]any, len(cols))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}
		row := make(driver.RawRow, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (c *sqlConnection) Close() error { return c.db.Close() }

func (c *sqlConnection) ListTables(ctx context.Context, schema string) ([]string, error) {
	var query string
	var args []any
	switch c.kind {
	case KindSQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name"
	case KindPostgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = $1 ORDER BY table_name"
		if schema == "" {
			schema = "public"
		}
		args = []any{schema}
	case KindMySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = ?"
		if schema == "" {
			schema = "DATABASE()"
		}
		args = []any{schema}
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (c *sqlConnection) DescribeTable(ctx context.Context, table, schema string) ([]driver.ColumnInfo, error) {
	switch c.kind {
	case KindSQLite:
		return c.describeSQLite(ctx, table)
	default:
		return c.describeInformationSchema(ctx, table, schema)
	}
}

func (c *sqlConnection) describeSQLite(ctx context.Context, table string) ([]driver.ColumnInfo, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLiteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []driver.ColumnInfo
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		var def *string
		if dflt.Valid {
			def = &dflt.String
		}
		cols = append(cols, driver.ColumnInfo{
			Name:       name,
			Type:       colType,
			Nullable:   notNull == 0,
			Default:    def,
			PrimaryKey: pk > 0,
		})
	}
	return cols, rows.Err()
}

func quoteSQLiteIdent(name string) string {
	return "`" + name + "`"
}

func (c *sqlConnection) describeInformationSchema(ctx context.Context, table, schema string) ([]driver.ColumnInfo, error) {
	placeholder1, placeholder2 := "$1", "$2"
	if c.kind == KindMySQL {
		placeholder1, placeholder2 = "?", "?"
	}
	if schema == "" {
		if c.kind == KindPostgres {
			schema = "public"
		}
	}
	query := fmt.Sprintf(`SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = %s AND table_schema = %s
		ORDER BY ordinal_position`, placeholder1, placeholder2)
	rows, err := c.db.QueryContext(ctx, query, table, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []driver.ColumnInfo
	for rows.Next() {
		var name, dataType, nullable string
		var dflt sql.NullString
		if err := rows.Scan(&name, &dataType, &nullable, &dflt); err != nil {
			return nil, err
		}
		var def *string
		if dflt.Valid {
			def = &dflt.String
		}
		cols = append(cols, driver.ColumnInfo{
			Name:     name,
			Type:     dataType,
			Nullable: nullable == "YES",
			Default:  def,
		})
	}
	return cols, rows.Err()
}

func (c *sqlConnection) ListSchemas(ctx context.Context) ([]string, error) {
	switch c.kind {
	case KindSQLite:
		return nil, nil
	case KindPostgres:
		rows, err := c.db.QueryContext(ctx, "SELECT schema_name FROM information_schema.schemata ORDER BY schema_name")
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, err
			}
			out = append(out, name)
		}
		return out, rows.Err()
	case KindMySQL:
		rows, err := c.db.QueryContext(ctx, "SELECT schema_name FROM information_schema.schemata")
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return nil, err
			}
			out = append(out, name)
		}
		return out, rows.Err()
	default:
		return nil, nil
	}
}

// SupportsPreparedStatements reports true unconditionally: all three
// wired drivers support database/sql's native statement preparation.
func (c *sqlConnection) SupportsPreparedStatements() bool { return true }

func (c *sqlConnection) PrepareStatement(ctx context.Context, query string) (driver.StatementHandle, error) {
	return c.db.PrepareContext(ctx, query)
}

func (c *sqlConnection) ExecutePrepared(ctx context.Context, handle driver.StatementHandle, params []any) (driver.RawRows, error) {
	stmt, ok := handle.(*sql.Stmt)
	if !ok {
		return nil, fmt.Errorf("driveradapter: handle is not a *sql.Stmt")
	}
	rows, err := stmt.QueryContext(ctx, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}
