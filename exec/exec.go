// Package exec is the execution surface: it compiles a Query tree for
// a target dialect (DDL is not handled here), binds a caller's named-parameter record into
// the compiler's positional order, invokes a driver.Connection, and
// decodes rows through a codec.Registry into the caller's declared
// output shape. Every blocking call is wrapped in an opentracing span,
// the same instrumentation seam the engine's client package used
// around its own execute/query methods.
package exec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/codec"
	"github.com/omniql-engine/relq/compiler"
	"github.com/omniql-engine/relq/dialect"
	"github.com/omniql-engine/relq/driver"
	"github.com/omniql-engine/relq/rqerrors"
)

// NamedParams binds parameter names (as produced by compiler.Compile)
// to caller-supplied values.
type NamedParams = map[string]any

// SQL compiles q for d without executing it. It is the same compile
// step fetch_all/execute_dml run internally, exposed directly for
// inspection and for tests that assert on generated SQL text.
func SQL(d dialect.Dialect, q ast.Query) (sqlText string, paramNames []string, err error) {
	return compiler.New(d).Compile(q)
}

// bind orders named's values by paramNames, left to right, failing on
// any name with no corresponding entry.
func bind(paramNames []string, named NamedParams) ([]any, error) {
	values := make([]any, len(paramNames))
	for i, name := range paramNames {
		v, ok := named[name]
		if !ok {
			return nil, rqerrors.NewMissingParam(name)
		}
		values[i] = v
	}
	return values, nil
}

func compileAndBind(d dialect.Dialect, q ast.Query, named NamedParams) (string, []any, error) {
	sqlText, paramNames, err := compiler.New(d).Compile(q)
	if err != nil {
		return "", nil, err
	}
	values, err := bind(paramNames, named)
	if err != nil {
		return "", nil, err
	}
	return sqlText, values, nil
}

func startSpan(ctx context.Context, op string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContext(ctx, op)
}

// FetchAll compiles q, binds named, executes against conn, and decodes
// every returned row into T via reg.
func FetchAll[T any](ctx context.Context, conn driver.Connection, d dialect.Dialect, reg *codec.Registry, q ast.Query, named NamedParams) ([]T, error) {
	span, ctx := startSpan(ctx, "relq.fetch_all")
	defer span.Finish()

	sqlText, values, err := compileAndBind(d, q, named)
	if err != nil {
		return nil, err
	}
	rawRows, err := conn.ExecuteSQL(ctx, sqlText, values)
	if err != nil {
		return nil, &rqerrors.ExecutionError{SQL: sqlText, Cause: err}
	}
	out := make([]T, 0, len(rawRows))
	for _, raw := range rawRows {
		row, err := codec.MapRow[T](reg, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// FetchOne requires the result set to hold exactly one row.
func FetchOne[T any](ctx context.Context, conn driver.Connection, d dialect.Dialect, reg *codec.Registry, q ast.Query, named NamedParams) (T, error) {
	var zero T
	rows, err := FetchAll[T](ctx, conn, d, reg, q, named)
	if err != nil {
		return zero, err
	}
	if len(rows) != 1 {
		return zero, &rqerrors.CardinalityError{Kind: rqerrors.WantExactlyOne, Count: len(rows)}
	}
	return rows[0], nil
}

// FetchMaybe tolerates an empty result set, returning a nil pointer,
// but fails when two or more rows are returned.
func FetchMaybe[T any](ctx context.Context, conn driver.Connection, d dialect.Dialect, reg *codec.Registry, q ast.Query, named NamedParams) (*T, error) {
	rows, err := FetchAll[T](ctx, conn, d, reg, q, named)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, &rqerrors.CardinalityError{Kind: rqerrors.WantAtMostOne, Count: len(rows)}
	}
}

// ExecuteDML compiles, binds, and executes q, discarding any rows the
// driver returns.
func ExecuteDML(ctx context.Context, conn driver.Connection, d dialect.Dialect, q ast.Query, named NamedParams) error {
	span, ctx := startSpan(ctx, "relq.execute_dml")
	defer span.Finish()

	sqlText, values, err := compileAndBind(d, q, named)
	if err != nil {
		return err
	}
	if _, err := conn.ExecuteSQL(ctx, sqlText, values); err != nil {
		return &rqerrors.ExecutionError{SQL: sqlText, Cause: err}
	}
	return nil
}

// Explain compiles q, prepends d's EXPLAIN form, runs it with no bound
// parameters, and joins the returned rows' representations with
// newlines.
func Explain(ctx context.Context, conn driver.Connection, d dialect.Dialect, q ast.Query) (string, error) {
	span, ctx := startSpan(ctx, "relq.explain")
	defer span.Finish()

	sqlText, _, err := compiler.New(d).Compile(q)
	if err != nil {
		return "", err
	}
	explainSQL := d.ExplainPrefix() + " " + sqlText
	rawRows, err := conn.ExecuteSQL(ctx, explainSQL, nil)
	if err != nil {
		return "", &rqerrors.ExecutionError{SQL: explainSQL, Cause: err}
	}
	lines := make([]string, len(rawRows))
	for i, row := range rawRows {
		lines[i] = formatRow(row)
	}
	return strings.Join(lines, "\n"), nil
}

// formatRow renders a raw row deterministically (columns sorted by
// name) since map iteration order is not stable.
func formatRow(row driver.RawRow) string {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s=%v", col, row[col])
	}
	return strings.Join(parts, " ")
}
