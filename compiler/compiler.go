// Package compiler walks an ast.Query/ast.DDLStatement tree and emits
// dialect-specific SQL text, mirroring the role the engine's translator
// package played (one function per database, switched on a dialect
// name) — except here the switch is a single Dialect interface and the
// walk produces SQL text directly instead of an intermediate protobuf.
package compiler

import (
	"fmt"
	"strings"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect"
	"github.com/omniql-engine/relq/rqerrors"
)

// Compiler compiles AST trees for one fixed target dialect. It is safe
// to reuse across many Compile calls but is not safe for concurrent use
// because Warnings accumulates per call; wrap it in a mutex or build
// one per goroutine if compiling concurrently.
type Compiler struct {
	D dialect.Dialect

	// Warnings collects non-fatal notes from the most recent Compile or
	// CompileDDL call: dialect-specific rewrites and best-effort DDL
	// emissions that still produced SQL. Cleared at the start of each
	// call.
	Warnings []dialect.Warning
}

// New builds a Compiler targeting d.
func New(d dialect.Dialect) *Compiler {
	return &Compiler{D: d}
}

// context threads the per-statement parameter buffer and the primary
// table resolved for the current enclosing statement. A Subquery
// starts a fresh primary-table scope but shares the same parameter
// buffer, since parameter order is defined over the whole tree.
type context struct {
	paramNames     *[]string
	primaryTable   string
	primaryTableOK bool
}

func (c *Compiler) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, dialect.Warning{Message: fmt.Sprintf(format, args...)})
}

// Compile walks q and returns the generated SQL text along with the
// ordered list of named parameters encountered, left to right,
// depth-first.
func (c *Compiler) Compile(q ast.Query) (sql string, paramNames []string, err error) {
	c.Warnings = nil
	names := []string{}
	ctx := &context{paramNames: &names}
	sql, err = c.compileTop(q, ctx)
	if err != nil {
		return "", nil, err
	}
	return sql, names, nil
}

func (c *Compiler) quote(name string) string { return c.D.QuoteIdentifier(name) }

// compileTop dispatches the statement-level forms that can wrap an
// entire query (With, set operations) before falling through to the
// single-statement builder for SELECT/INSERT/UPDATE/DELETE pipelines.
func (c *Compiler) compileTop(q ast.Query, ctx *context) (string, error) {
	switch n := q.(type) {
	case ast.With:
		return c.compileWith(n, ctx)
	case ast.SetUnion:
		left, err := c.compileTop(n.Left, ctx)
		if err != nil {
			return "", err
		}
		right, err := c.compileTop(n.Right, ctx)
		if err != nil {
			return "", err
		}
		op := "UNION"
		if n.All {
			op = "UNION ALL"
		}
		return fmt.Sprintf("(%s) %s (%s)", left, op, right), nil
	case ast.SetIntersect:
		if !c.D.Supports(dialect.CapIntersectExcept) {
			return "", rqerrors.NewUnsupported(string(dialect.CapIntersectExcept), "INTERSECT is not supported by "+c.D.Name())
		}
		left, err := c.compileTop(n.Left, ctx)
		if err != nil {
			return "", err
		}
		right, err := c.compileTop(n.Right, ctx)
		if err != nil {
			return "", err
		}
		op := "INTERSECT"
		if n.All {
			op = "INTERSECT ALL"
		}
		return fmt.Sprintf("(%s) %s (%s)", left, op, right), nil
	case ast.SetExcept:
		if !c.D.Supports(dialect.CapIntersectExcept) {
			return "", rqerrors.NewUnsupported(string(dialect.CapIntersectExcept), "EXCEPT is not supported by "+c.D.Name())
		}
		left, err := c.compileTop(n.Left, ctx)
		if err != nil {
			return "", err
		}
		right, err := c.compileTop(n.Right, ctx)
		if err != nil {
			return "", err
		}
		op := "EXCEPT"
		if n.All {
			op = "EXCEPT ALL"
		}
		return fmt.Sprintf("(%s) %s (%s)", left, op, right), nil
	default:
		inner := &context{paramNames: ctx.paramNames}
		inner.primaryTable, inner.primaryTableOK = c.resolvePrimaryTable(q)
		s, err := c.buildStmt(q, inner)
		if err != nil {
			return "", err
		}
		return c.assemble(s)
	}
}

func (c *Compiler) compileWith(n ast.With, ctx *context) (string, error) {
	if !c.D.Supports(dialect.CapCTE) {
		return "", rqerrors.NewUnsupported(string(dialect.CapCTE), "CTE is not supported by "+c.D.Name())
	}
	if n.Recursive && !c.D.Supports(dialect.CapRecursiveCTE) {
		return "", rqerrors.NewUnsupported(string(dialect.CapRecursiveCTE), "recursive CTE is not supported by "+c.D.Name())
	}
	if len(n.Ctes) == 0 {
		return "", rqerrors.NewEmptyStructure("WITH has no common table expressions")
	}
	parts := make([]string, len(n.Ctes))
	for i, cte := range n.Ctes {
		body, err := c.compileTop(cte.Query, ctx)
		if err != nil {
			return "", err
		}
		cols := ""
		if len(cte.Columns) > 0 {
			quoted := make([]string, len(cte.Columns))
			for j, col := range cte.Columns {
				quoted[j] = c.quote(col)
			}
			cols = " (" + strings.Join(quoted, ", ") + ")"
		}
		parts[i] = fmt.Sprintf("%s%s AS (%s)", c.quote(cte.Name), cols, body)
	}
	main, err := c.compileTop(n.Main, ctx)
	if err != nil {
		return "", err
	}
	keyword := "WITH"
	if n.Recursive {
		keyword = "WITH RECURSIVE"
	}
	return fmt.Sprintf("%s %s %s", keyword, strings.Join(parts, ", "), main), nil
}

// resolvePrimaryTable finds the single source table reachable from q
// without passing through a Join, per the placeholder-resolution rule.
// It returns ok=false when zero or more than one such table exists.
func (c *Compiler) resolvePrimaryTable(q ast.Query) (string, bool) {
	tables := map[string]bool{}
	ambiguous := false
	var walk func(ast.Query)
	walk = func(n ast.Query) {
		switch v := n.(type) {
		case ast.From:
			tables[v.Table] = true
		case ast.Join:
			// A Join is not transparent: the subtree it wraps is reachable
			// only by passing through the join, so it contributes no
			// primary table and stopping the walk here (rather than
			// recursing into v.Source) is what makes a single-join query
			// resolve to zero primary tables, per the "without passing
			// through a Join" rule.
			ambiguous = true
		case ast.Where:
			walk(v.Source)
		case ast.OrderBy:
			walk(v.Source)
		case ast.Limit:
			walk(v.Source)
		case ast.Offset:
			walk(v.Source)
		case ast.Distinct:
			walk(v.Source)
		case ast.GroupBy:
			walk(v.Source)
		case ast.Having:
			walk(v.Source)
		case ast.Select:
			walk(v.Source)
		case ast.InsertInto:
			tables[v.Table] = true
		case ast.InsertValues:
			walk(v.Source)
		case ast.Update:
			tables[v.Table] = true
		case ast.UpdateSet:
			walk(v.Source)
		case ast.UpdateWhere:
			walk(v.Source)
		case ast.DeleteFrom:
			tables[v.Table] = true
		case ast.DeleteWhere:
			walk(v.Source)
		case ast.OnConflict:
			walk(v.Source)
		case ast.Returning:
			walk(v.Source)
		}
	}
	walk(q)
	if ambiguous || len(tables) != 1 {
		return "", false
	}
	for t := range tables {
		return t, true
	}
	return "", false
}
