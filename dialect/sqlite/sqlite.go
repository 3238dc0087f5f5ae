// Package sqlite implements dialect.Dialect for SQLite, modeled on the
// SQLite-specific rules the engine's translator package carried
// alongside its PostgreSQL and MySQL counterparts (quoting, backtick
// identifiers, ? placeholders, and the RETURNING-since-3.35 version
// gate).
package sqlite

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect"
)

// Dialect targets a specific SQLite release. Version is a three-part
// "major.minor.patch" string (e.g. "3.35.0"); leave empty to assume
// the latest supported feature set.
type Dialect struct {
	Version string
}

// New builds a SQLite dialect for the given engine version.
func New(version string) *Dialect {
	return &Dialect{Version: version}
}

func (d *Dialect) Name() string { return "sqlite" }

func (d *Dialect) QuoteIdentifier(name string) string {
	return dialect.QuoteWithChar(name, '`')
}

func (d *Dialect) Placeholder(idx int) string { return "?" }

func (d *Dialect) Supports(cap dialect.Capability) bool {
	switch cap {
	case dialect.CapCTE, dialect.CapRecursiveCTE, dialect.CapUpsert, dialect.CapWindow,
		dialect.CapFullJoin, dialect.CapIntersectExcept:
		return true
	case dialect.CapILike:
		return false // no native ILIKE; emulated via RewriteILike
	case dialect.CapReturning:
		return atLeast(d.Version, 3, 35, 0)
	case dialect.CapLateral, dialect.CapBulkCopy, dialect.CapSavepoint, dialect.CapAdvisoryLock:
		return cap == dialect.CapSavepoint
	default:
		return false
	}
}

func (d *Dialect) ColumnTypeName(t ast.ColumnType, params string) string {
	switch t {
	case ast.TypeInteger, ast.TypeBigInt:
		return "INTEGER"
	case ast.TypeReal:
		return "REAL"
	case ast.TypeText, ast.TypeTimestamp, ast.TypeDate, ast.TypeUUID, ast.TypeJSON:
		return "TEXT"
	case ast.TypeBoolean:
		return "INTEGER"
	case ast.TypeBlob:
		return "BLOB"
	default:
		return strings.ToUpper(string(t))
	}
}

func (d *Dialect) ColumnDefType(col ast.ColumnDef) (string, bool) {
	return d.ColumnTypeName(col.Type, col.TypeParams), false
}

func (d *Dialect) EncodeLiteral(v ast.LiteralValue) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case string:
		return dialect.EscapeTextLiteral(val), nil
	case []byte:
		return "X'" + hex.EncodeToString(val) + "'", nil
	default:
		if sql, ok, err := dialect.EncodeCommonLiteral(v); ok {
			return sql, err
		}
		return "", fmt.Errorf("sqlite: cannot encode literal of type %T", v)
	}
}

// RewriteILike emulates case-insensitive LIKE with UPPER() on both
// sides, the rewrite spec.md's conformance suite requires verbatim for
// SQLite.
func (d *Dialect) RewriteILike(negated bool, left, right string) (string, bool) {
	not := ""
	if negated {
		not = "NOT "
	}
	return fmt.Sprintf("UPPER(%s) %sLIKE UPPER(%s)", left, not, right), true
}

func (d *Dialect) ExplainPrefix() string { return "EXPLAIN QUERY PLAN" }

func atLeast(version string, major, minor, patch int) bool {
	if version == "" {
		return true
	}
	parts := strings.SplitN(version, ".", 3)
	nums := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return true
		}
		nums[i] = n
	}
	want := [3]int{major, minor, patch}
	for i := 0; i < 3; i++ {
		if nums[i] != want[i] {
			return nums[i] > want[i]
		}
	}
	return true
}
