// Package query is the generic pipeline builder layer over ast.Query.
// Each method returns a new Builder wrapping its predecessor — trees
// are never mutated — so the chain mirrors SQL's logical evaluation
// order (spec.md §4.2): From -> Join -> Where -> GroupBy -> Having ->
// Select -> Distinct -> OrderBy -> Limit -> Offset.
//
// The output row shape is carried as a type parameter so a fully built
// pipeline can be handed to exec.FetchAll[T] without a type assertion.
// It starts as AnonRow at From and is overwritten only by Select (or,
// for DML pipelines, by Returning) — every other step is shape
// preserving, matching spec.md's "Shape preservation" invariant.
package query

import "github.com/omniql-engine/relq/ast"

// AnonRow is the output shape of a pipeline before any Select or
// Returning narrows it: an anonymous record, decoded by the codec
// registry as map[string]any.
type AnonRow = map[string]any

// SelectBuilder wraps an ast.Query node produced by the SELECT-shaped
// pipeline (From/Join/Where/GroupBy/Having/Select/...).
type SelectBuilder[T any] struct {
	Node ast.Query
}

// From starts a new pipeline rooted at table.
func From(table string) SelectBuilder[AnonRow] {
	return SelectBuilder[AnonRow]{Node: ast.From{Table: table}}
}

// Where filters rows produced by the predecessor.
func (b SelectBuilder[T]) Where(cond ast.Expr) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.Where{Source: b.Node, Condition: cond}}
}

// Join adds a joined table of the given kind.
func (b SelectBuilder[T]) Join(table string, on ast.Expr, kind ast.JoinKind) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.Join{Source: b.Node, Table: table, On: on, Kind: kind}}
}

// InnerJoin adds an INNER JOIN.
func (b SelectBuilder[T]) InnerJoin(table string, on ast.Expr) SelectBuilder[T] {
	return b.Join(table, on, ast.JoinInner)
}

// LeftJoin adds a LEFT JOIN.
func (b SelectBuilder[T]) LeftJoin(table string, on ast.Expr) SelectBuilder[T] {
	return b.Join(table, on, ast.JoinLeft)
}

// RightJoin adds a RIGHT JOIN.
func (b SelectBuilder[T]) RightJoin(table string, on ast.Expr) SelectBuilder[T] {
	return b.Join(table, on, ast.JoinRight)
}

// FullJoin adds a FULL OUTER JOIN.
func (b SelectBuilder[T]) FullJoin(table string, on ast.Expr) SelectBuilder[T] {
	return b.Join(table, on, ast.JoinFull)
}

// OrderBy sorts rows produced by the predecessor.
func (b SelectBuilder[T]) OrderBy(orderings ...ast.Ordering) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.OrderBy{Source: b.Node, Orderings: orderings}}
}

// Asc builds an ascending Ordering entry.
func Asc(e ast.Expr) ast.Ordering { return ast.Ordering{Expr: e, Desc: false} }

// Desc builds a descending Ordering entry.
func Desc(e ast.Expr) ast.Ordering { return ast.Ordering{Expr: e, Desc: true} }

// Limit caps the number of rows produced by the predecessor.
func (b SelectBuilder[T]) Limit(n int) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.Limit{Source: b.Node, N: n}}
}

// Offset skips n rows produced by the predecessor.
func (b SelectBuilder[T]) Offset(n int) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.Offset{Source: b.Node, N: n}}
}

// Distinct deduplicates rows produced by the predecessor.
func (b SelectBuilder[T]) Distinct() SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.Distinct{Source: b.Node}}
}

// GroupBy groups rows produced by the predecessor. An empty fields list
// is permitted and compiles as an identity operation.
func (b SelectBuilder[T]) GroupBy(fields ...ast.Expr) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.GroupBy{Source: b.Node, Fields: fields}}
}

// Having filters grouped rows produced by the predecessor.
func (b SelectBuilder[T]) Having(cond ast.Expr) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.Having{Source: b.Node, Condition: cond}}
}

// F builds an unaliased SelectField.
func F(e ast.Expr) ast.SelectField { return ast.SelectField{Expr: e} }

// FAs builds an aliased SelectField.
func FAs(e ast.Expr, alias string) ast.SelectField { return ast.SelectField{Expr: e, Alias: alias} }

// Select projects the predecessor onto fields, changing the output
// shape to U. It is a free function, not a method, because Go methods
// cannot introduce a type parameter independent of the receiver's: the
// caller writes query.Select[UserRow](b, ...). An empty fields list is
// permitted and compiles as an identity operation, in which case U
// should be the same type as T.
func Select[U any, T any](b SelectBuilder[T], fields ...ast.SelectField) SelectBuilder[U] {
	return SelectBuilder[U]{Node: ast.Select{Source: b.Node, Fields: fields}}
}
