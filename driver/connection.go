// Package driver defines the minimal connection capability the core
// consumes — execute_sql and close, per spec — plus the optional
// prepared-statement extension, metadata introspection, and the
// connection pool that manages a set of connections under bounded
// concurrency.
//
// Concrete wire-protocol adapters (database/sql-backed implementations
// for SQLite, PostgreSQL, MySQL) live in the sibling driveradapter
// package; this package only describes the shape they must satisfy.
package driver

import "context"

// RawRow is one row as returned by a connection: named values, driver-
// native types, decoded further by the codec registry.
type RawRow = map[string]any

// RawRows is the row set returned by a single statement execution.
type RawRows = []RawRow

// Connection is the capability the core needs from any database
// driver: submit SQL with positional parameters and get rows back.
type Connection interface {
	// ExecuteSQL synchronously submits sql with params bound positionally
	// and returns the resulting rows. For DML/DDL, rows may be empty.
	ExecuteSQL(ctx context.Context, sql string, params []any) (RawRows, error)

	// Close releases all resources held by the connection.
	Close() error

	// ListTables lists tables visible in the given schema; schema may be
	// empty to mean the connection's default.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// DescribeTable returns column metadata for table.
	DescribeTable(ctx context.Context, table, schema string) ([]ColumnInfo, error)

	// ListSchemas lists schema names, or an empty slice for engines
	// (SQLite) with no schema concept.
	ListSchemas(ctx context.Context) ([]string, error)
}

// ColumnInfo describes one column as reported by DescribeTable.
type ColumnInfo struct {
	Name       string
	Type       string
	Nullable   bool
	Default    *string
	PrimaryKey bool
}

// StatementHandle is an opaque prepared-statement reference, scoped to
// the connection that prepared it.
type StatementHandle any

// PreparedStatements is the optional extension interface a Connection
// may additionally implement to support prepare-once/execute-many.
// Callers type-assert for it rather than requiring it unconditionally.
type PreparedStatements interface {
	SupportsPreparedStatements() bool
	PrepareStatement(ctx context.Context, sql string) (StatementHandle, error)
	ExecutePrepared(ctx context.Context, handle StatementHandle, params []any) (RawRows, error)
}
