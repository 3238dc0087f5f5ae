// Package mysql implements dialect.Dialect for MySQL, modeled on the
// engine's MySQL translator rules: backtick identifiers, ? placeholders,
// TINYINT(1)/DOUBLE/DATETIME/CHAR(36) type mapping, ILIKE emulation via
// UPPER, rejection of FULL OUTER JOIN and INTERSECT/EXCEPT, and a
// version gate requiring 8.0 for CTE and window function support.
package mysql

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect"
)

// Dialect targets a specific MySQL release. Version is a
// "major.minor.patch" string; leave empty to assume 8.0+.
type Dialect struct {
	Version string
}

// New builds a MySQL dialect for the given engine version.
func New(version string) *Dialect {
	return &Dialect{Version: version}
}

func (d *Dialect) Name() string { return "mysql" }

func (d *Dialect) QuoteIdentifier(name string) string {
	return dialect.QuoteWithChar(name, '`')
}

func (d *Dialect) Placeholder(idx int) string { return "?" }

func (d *Dialect) Supports(cap dialect.Capability) bool {
	switch cap {
	case dialect.CapCTE, dialect.CapRecursiveCTE, dialect.CapWindow:
		return atLeast(d.Version, 8, 0, 0)
	case dialect.CapReturning:
		return false
	case dialect.CapUpsert:
		return true
	case dialect.CapLateral:
		return atLeast(d.Version, 8, 0, 14)
	case dialect.CapBulkCopy:
		return true // LOAD DATA LOCAL INFILE, falling back to multi-row INSERT
	case dialect.CapSavepoint:
		return true
	case dialect.CapAdvisoryLock:
		return true // GET_LOCK()/RELEASE_LOCK()
	case dialect.CapFullJoin, dialect.CapIntersectExcept:
		return false
	case dialect.CapILike:
		return false
	default:
		return false
	}
}

func (d *Dialect) ColumnTypeName(t ast.ColumnType, params string) string {
	switch t {
	case ast.TypeInteger:
		return "INT"
	case ast.TypeBigInt:
		return "BIGINT"
	case ast.TypeReal:
		return "DOUBLE"
	case ast.TypeText, ast.TypeJSON:
		return "TEXT"
	case ast.TypeTimestamp:
		return "DATETIME"
	case ast.TypeDate:
		return "DATE"
	case ast.TypeUUID:
		return "CHAR(36)"
	case ast.TypeBoolean:
		return "TINYINT(1)"
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
		return "", fmt.Errorf("mysql: cannot encode literal of type %T", v)
	}
}

// RewriteILike emulates case-insensitive LIKE with UPPER() on both
// sides, same rewrite as SQLite since MySQL lacks a native ILIKE
// operator.
func (d *Dialect) RewriteILike(negated bool, left, right string) (string, bool) {
	not := ""
	if negated {
		not = "NOT "
	}
	return fmt.Sprintf("UPPER(%s) %sLIKE UPPER(%s)", left, not, right), true
}

func (d *Dialect) ExplainPrefix() string { return "EXPLAIN" }

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
