// Package postgres implements dialect.Dialect for PostgreSQL, modeled
// on the engine's TranslatePostgreSQL rules: double-quoted identifiers,
// $n placeholders, SERIAL/BIGSERIAL auto-increment columns, and JSONB/
// BYTEA/UUID native types.
package postgres

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect"
)

// Dialect targets PostgreSQL. PostgreSQL has supported every
// capability this package gates on since 9.5 or earlier, so no version
// field is needed.
type Dialect struct{}

// New builds a PostgreSQL dialect.
func New() *Dialect { return &Dialect{} }

func (d *Dialect) Name() string { return "postgresql" }

func (d *Dialect) QuoteIdentifier(name string) string {
	return dialect.QuoteWithChar(name, '"')
}

func (d *Dialect) Placeholder(idx int) string {
	return "$" + strconv.Itoa(idx)
}

func (d *Dialect) Supports(cap dialect.Capability) bool {
	switch cap {
	case dialect.CapCTE, dialect.CapRecursiveCTE, dialect.CapReturning, dialect.CapUpsert,
		dialect.CapWindow, dialect.CapLateral, dialect.CapBulkCopy, dialect.CapSavepoint,
		dialect.CapAdvisoryLock, dialect.CapFullJoin, dialect.CapIntersectExcept:
		return true
	case dialect.CapILike:
		return true // native ILIKE operator, no rewrite needed
	default:
		return false
	}
}

// autoIncrementColumn reports whether constraints carry an
// AutoIncrement marker, the signal that converts the declared type to
// SERIAL/BIGSERIAL and suppresses a separate AUTOINCREMENT clause.
func autoIncrementColumn(constraints []ast.ColumnConstraint) bool {
	for _, c := range constraints {
		if c.Kind == ast.ConstraintAutoIncrement {
			return true
		}
	}
	return false
}

// ColumnTypeName maps the dialect-neutral type. Callers that also need
// the SERIAL/BIGSERIAL auto-increment rewrite should use
// ColumnDefType instead, since that rewrite depends on the
// column's constraint list, not just its type.
func (d *Dialect) ColumnTypeName(t ast.ColumnType, params string) string {
	switch t {
	case ast.TypeInteger:
		return "INTEGER"
	case ast.TypeBigInt:
		return "BIGINT"
	case ast.TypeReal:
		return "DOUBLE PRECISION"
	case ast.TypeText:
		return "TEXT"
	case ast.TypeTimestamp:
		return "TIMESTAMP"
	case ast.TypeDate:
		return "DATE"
	case ast.TypeUUID:
		return "UUID"
	case ast.TypeJSON:
		return "JSONB"
	case ast.TypeBoolean:
		return "BOOLEAN"
	case ast.TypeBlob:
		return "BYTEA"
	default:
		return strings.ToUpper(string(t))
	}
}

// ColumnDefType applies the AutoIncrement -> SERIAL/BIGSERIAL rewrite:
// it returns the type name to emit and whether the AutoIncrement
// constraint should be suppressed from the column's constraint clause
// because it is now implied by the SERIAL/BIGSERIAL type.
func (d *Dialect) ColumnDefType(col ast.ColumnDef) (typeName string, suppressAutoIncrement bool) {
	if autoIncrementColumn(col.Constraints) {
		switch col.Type {
		case ast.TypeInteger:
			return "SERIAL", true
		case ast.TypeBigInt:
			return "BIGSERIAL", true
		}
	}
	return d.ColumnTypeName(col.Type, col.TypeParams), false
}

func (d *Dialect) EncodeLiteral(v ast.LiteralValue) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case string:
		return dialect.EscapeTextLiteral(val), nil
	case []byte:
		return dialect.EscapeTextLiteral(`\x` + hex.EncodeToString(val)), nil
	default:
		if sql, ok, err := dialect.EncodeCommonLiteral(v); ok {
			return sql, err
		}
		return "", fmt.Errorf("postgresql: cannot encode literal of type %T", v)
	}
}

// RewriteILike is a no-op: PostgreSQL has a native ILIKE operator.
func (d *Dialect) RewriteILike(negated bool, left, right string) (string, bool) {
	return "", false
}

func (d *Dialect) ExplainPrefix() string { return "EXPLAIN" }
