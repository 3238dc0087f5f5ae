// Package dialect describes what a target SQL engine can do and how it
// spells identifiers, placeholders, and column types. The compiler asks
// a Dialect rather than branching on a database name string, the same
// indirection omniql's translator package used per-database functions
// for (TranslatePostgreSQL, TranslateMySQL, TranslateSQLite) — except
// here the branch point is a single interface instead of a switch.
package dialect

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omniql-engine/relq/ast"
)

// Capability names one optional behavior a dialect may or may not
// support. The compiler gates emission of the corresponding SQL
// construct on Dialect.Supports, returning rqerrors.CompileError
// instead of emitting SQL the target engine would reject.
type Capability string

const (
	CapCTE            Capability = "CTE"
	CapRecursiveCTE   Capability = "RECURSIVE_CTE"
	CapReturning      Capability = "RETURNING"
	CapUpsert         Capability = "UPSERT"
	CapWindow         Capability = "WINDOW"
	CapLateral        Capability = "LATERAL"
	CapBulkCopy       Capability = "BULK_COPY"
	CapSavepoint      Capability = "SAVEPOINT"
	CapAdvisoryLock   Capability = "ADVISORY_LOCK"
	CapFullJoin       Capability = "FULL_JOIN"
	CapIntersectExcept Capability = "INTERSECT_EXCEPT"
	CapILike          Capability = "ILIKE"
)

// Dialect translates the dialect-neutral AST into one target engine's
// surface syntax: identifier quoting, parameter placeholders, literal
// encoding, column type names, and capability gates.
type Dialect interface {
	// Name identifies the dialect for error messages and metrics tags.
	Name() string

	// QuoteIdentifier quotes a table, column, or alias name.
	QuoteIdentifier(name string) string

	// Placeholder returns the parameter marker for the 1-based
	// positional index idx within a single statement.
	Placeholder(idx int) string

	// Supports reports whether the dialect implements a capability.
	Supports(cap Capability) bool

	// ColumnTypeName maps a dialect-neutral ColumnType (with optional
	// type params, e.g. "(10,2)") to the engine's concrete type name.
	ColumnTypeName(t ast.ColumnType, params string) string

	// ColumnDefType maps a full column definition to its concrete type
	// name, additionally reporting whether the column's AutoIncrement
	// constraint should be suppressed from the rendered constraint list
	// because the type rewrite already implies it (PostgreSQL's
	// INTEGER/BIGINT + AutoIncrement -> SERIAL/BIGSERIAL).
	ColumnDefType(col ast.ColumnDef) (typeName string, suppressAutoIncrement bool)

	// EncodeLiteral renders a Go literal value inline as SQL text. The
	// compiler uses it for every ast.Literal; only ast.Param values are
	// bound as parameters.
	EncodeLiteral(v ast.LiteralValue) (string, error)

	// RewriteILike rewrites an OpILike/OpNotILike comparison into an
	// equivalent expression for dialects without native ILIKE, returning
	// ok=false when no rewrite is needed (native ILIKE support).
	RewriteILike(negated bool, left, right string) (sql string, ok bool)

	// ExplainPrefix returns the keyword(s) prepended to a compiled
	// statement to produce its query-plan form.
	ExplainPrefix() string
}

// EscapeTextLiteral single-quotes s, doubling any embedded single
// quote, per the text literal encoding rule shared by all three
// dialects.
func EscapeTextLiteral(s string) string {
	escaped := make([]byte, 0, len(s)+2)
	escaped = append(escaped, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			escaped = append(escaped, '\'', '\'')
		} else {
			escaped = append(escaped, s[i])
		}
	}
	escaped = append(escaped, '\'')
	return string(escaped)
}

const (
	dateLiteralLayout     = "2006-01-02"
	dateTimeLiteralLayout = "2006-01-02 15:04:05"
)

// EncodeCommonLiteral renders the Literal value domains §4.3 specifies
// identically across all three dialects — date, datetime, UUID, and
// JSON-shaped maps/lists, each single-quoted text per the shared text
// escaping rule. A dialect's EncodeLiteral calls this after its own
// switch to cover these without repeating the formatting three times;
// ok is false for any value outside this shared domain (including
// binary, which is dialect-specific: SQLite/MySQL use X'..' hex
// literals, PostgreSQL uses '\x..').
func EncodeCommonLiteral(v ast.LiteralValue) (sql string, ok bool, err error) {
	switch val := v.(type) {
	case ast.Date:
		return EscapeTextLiteral(time.Time(val).Format(dateLiteralLayout)), true, nil
	case time.Time:
		return EscapeTextLiteral(val.Format(dateTimeLiteralLayout)), true, nil
	case uuid.UUID:
		return EscapeTextLiteral(val.String()), true, nil
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return "", true, fmt.Errorf("json literal: %w", err)
		}
		return EscapeTextLiteral(string(b)), true, nil
	default:
		return "", false, nil
	}
}

// QuoteWithChar wraps name in the given quote rune, doubling any
// embedded occurrence of that rune, per the identifier quoting rule
// shared by all three dialects (they differ only in which character).
func QuoteWithChar(name string, quote byte) string {
	escaped := make([]byte, 0, len(name)+2)
	escaped = append(escaped, quote)
	for i := 0; i < len(name); i++ {
		if name[i] == quote {
			escaped = append(escaped, quote, quote)
		} else {
			escaped = append(escaped, name[i])
		}
	}
	escaped = append(escaped, quote)
	return string(escaped)
}

// Warning is a non-fatal note the compiler attaches to a compiled
// statement: a silent dialect-specific rewrite (e.g. ILIKE emulation)
// or a best-effort DDL operation (e.g. SQLite's DROP TABLE ... CASCADE,
// emitted without CASCADE).
type Warning struct {
	Message string
}
