package ast

import "time"

// This file implements the explicit combinator surface that spec.md
// §9 calls for in a language without operator overloading: every
// operator gets a named function (Eq, And, Not, Add, ...) instead of
// hijacking +, ==, etc. Operator application between an Expr and a raw
// Go value auto-wraps the value as a Literal via wrap.

// Col builds a qualified column reference.
func Col(table, column string) Expr {
	return ColRef{Table: table, Column: column}
}

// Field builds a PlaceholderField, resolved by the compiler to a
// ColRef against the enclosing query's single primary table.
func Field(column string) Expr {
	return PlaceholderField{Column: column}
}

// Lit wraps a raw value as a Literal.
func Lit(v LiteralValue) Expr {
	return Literal{Value: v}
}

// DateLit wraps t as a date-only Literal, rendered 'YYYY-MM-DD'. Use
// Lit(t) directly for a full datetime literal.
func DateLit(t time.Time) Expr {
	return Literal{Value: Date(t)}
}

// P builds a named parameter with the given type tag.
func P(typeTag, name string) Expr {
	return Param{TypeTag: typeTag, Name: name}
}

// Raw builds a verbatim SQL fragment.
func Raw(sql string) Expr {
	return RawExpr{SQL: sql}
}

// wrap lifts any value into an Expr: Expr values pass through
// unchanged, everything else becomes a Literal.
func wrap(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Literal{Value: v}
}

// Func builds a scalar function call, wrapping raw-value args as
// literals.
func Func(name string, args ...any) Expr {
	wrapped := make([]Expr, len(args))
	for i, a := range args {
		wrapped[i] = wrap(a)
	}
	return FuncCall{Name: name, Args: wrapped}
}

// CastTo builds a CAST(expr AS targetType) expression.
func CastTo(e any, targetType string) Expr {
	return Cast{Expr: wrap(e), TargetType: targetType}
}

// Case starts a CASE WHEN builder.
func Case() *CaseBuilder { return &CaseBuilder{} }

// CaseBuilder accumulates WHEN/THEN pairs and an optional ELSE before
// producing a CaseExpr.
type CaseBuilder struct {
	whens []CaseWhen
	els   Expr
}

// When appends a WHEN cond THEN result pair.
func (b *CaseBuilder) When(cond Expr, result any) *CaseBuilder {
	b.whens = append(b.whens, CaseWhen{Cond: cond, Result: wrap(result)})
	return b
}

// Else sets the ELSE branch.
func (b *CaseBuilder) Else(result any) *CaseBuilder {
	b.els = wrap(result)
	return b
}

// End finalizes the CASE expression. At least one When is required.
func (b *CaseBuilder) End() Expr {
	return CaseExpr{Whens: b.whens, Else: b.els}
}

// ---- Binary and unary operator combinators ----

func binary(op BinaryOperator, l, r any) Expr {
	return BinaryOp{Op: op, Left: wrap(l), Right: wrap(r)}
}

func Eq(l, r any) Expr       { return binary(OpEq, l, r) }
func Neq(l, r any) Expr      { return binary(OpNeq, l, r) }
func Lt(l, r any) Expr       { return binary(OpLt, l, r) }
func Gt(l, r any) Expr       { return binary(OpGt, l, r) }
func Lte(l, r any) Expr      { return binary(OpLte, l, r) }
func Gte(l, r any) Expr      { return binary(OpGte, l, r) }
func And(l, r any) Expr      { return binary(OpAnd, l, r) }
func Or(l, r any) Expr       { return binary(OpOr, l, r) }
func Add(l, r any) Expr      { return binary(OpAdd, l, r) }
func Sub(l, r any) Expr      { return binary(OpSub, l, r) }
func Mul(l, r any) Expr      { return binary(OpMul, l, r) }
func Div(l, r any) Expr      { return binary(OpDiv, l, r) }

// Like builds a LIKE comparison.
func Like(l, r any) Expr { return binary(OpLike, l, r) }

// NotLike builds a NOT LIKE comparison.
func NotLike(l, r any) Expr { return binary(OpNotLike, l, r) }

// ILike builds a case-insensitive LIKE comparison. Dialects lacking
// native ILIKE (SQLite, MySQL) emulate it with UPPER() at compile time.
func ILike(l, r any) Expr { return binary(OpILike, l, r) }

// NotILike builds a negated case-insensitive LIKE comparison.
func NotILike(l, r any) Expr { return binary(OpNotILike, l, r) }

// Not negates a boolean expression.
func Not(e Expr) Expr { return UnaryOp{Op: OpNot, Operand: e} }

// IsNull builds an IS NULL check.
func IsNull(e Expr) Expr { return UnaryOp{Op: OpIsNull, Operand: e} }

// IsNotNull builds an IS NOT NULL check.
func IsNotNull(e Expr) Expr { return UnaryOp{Op: OpIsNotNull, Operand: e} }

// Exists builds an EXISTS(subquery) predicate.
func Exists(sub Query) Expr {
	return UnaryOp{Op: OpExists, Operand: Subquery{Query: sub}}
}

// NotExists builds a NOT EXISTS(subquery) predicate.
func NotExists(sub Query) Expr {
	return UnaryOp{Op: OpNotExists, Operand: Subquery{Query: sub}}
}

// Between builds an expr BETWEEN low AND high predicate.
func Between(e, low, high any) Expr {
	return BetweenOp{Expr: wrap(e), Low: wrap(low), High: wrap(high)}
}

// NotBetween builds a negated BETWEEN predicate.
func NotBetween(e, low, high any) Expr {
	return BetweenOp{Expr: wrap(e), Low: wrap(low), High: wrap(high), Negated: true}
}

// InList builds an expr IN (values...) predicate over a finite
// expression list, wrapping raw values as literals.
func InList(e any, values ...any) Expr {
	wrapped := make([]Expr, len(values))
	for i, v := range values {
		wrapped[i] = wrap(v)
	}
	return InOp{Expr: wrap(e), Values: wrapped}
}

// NotInList builds a negated IN predicate over a finite list.
func NotInList(e any, values ...any) Expr {
	wrapped := make([]Expr, len(values))
	for i, v := range values {
		wrapped[i] = wrap(v)
	}
	return InOp{Expr: wrap(e), Values: wrapped, Negated: true}
}

// InSubquery builds an expr IN (subquery) predicate.
func InSubquery(e any, sub Query) Expr {
	return InOp{Expr: wrap(e), Subquery: &Subquery{Query: sub}}
}

// NotInSubquery builds a negated expr NOT IN (subquery) predicate.
func NotInSubquery(e any, sub Query) Expr {
	return InOp{Expr: wrap(e), Subquery: &Subquery{Query: sub}, Negated: true}
}

// Window builds a window function call; use its methods to attach the
// OVER clause before passing it to a Select field.
func Window(name string, args ...any) *WindowBuilder {
	var wrapped []Expr
	for _, a := range args {
		wrapped = append(wrapped, wrap(a))
	}
	return &WindowBuilder{name: name, args: wrapped}
}

// WindowBuilder accumulates a window function's OVER clause.
type WindowBuilder struct {
	name        string
	args        []Expr
	partitionBy []Expr
	orderBy     []WindowOrder
	frame       *Frame
}

// PartitionBy sets the PARTITION BY list.
func (b *WindowBuilder) PartitionBy(exprs ...Expr) *WindowBuilder {
	b.partitionBy = exprs
	return b
}

// OrderBy appends an ORDER BY entry to the OVER clause.
func (b *WindowBuilder) OrderBy(e Expr, desc bool) *WindowBuilder {
	b.orderBy = append(b.orderBy, WindowOrder{Expr: e, Desc: desc})
	return b
}

// RowsBetween sets a ROWS frame with explicit start/end bounds.
func (b *WindowBuilder) RowsBetween(start, end FrameBound) *WindowBuilder {
	b.frame = &Frame{Mode: FrameRows, Start: start, End: &end}
	return b
}

// RangeBetween sets a RANGE frame with explicit start/end bounds.
func (b *WindowBuilder) RangeBetween(start, end FrameBound) *WindowBuilder {
	b.frame = &Frame{Mode: FrameRange, Start: start, End: &end}
	return b
}

// Build finalizes the WindowFunc expression.
func (b *WindowBuilder) Build() Expr {
	return WindowFunc{
		Name: b.name,
		Args: b.args,
		Over: Over{PartitionBy: b.partitionBy, OrderBy: b.orderBy, Frame: b.frame},
	}
}

// Preceding builds a numeric PRECEDING frame bound.
func Preceding(n int) FrameBound { return FrameBound{Kind: BoundOffset, Offset: -n} }

// Following builds a numeric FOLLOWING frame bound.
func Following(n int) FrameBound { return FrameBound{Kind: BoundOffset, Offset: n} }

// CurrentRow builds the CURRENT ROW frame bound.
func CurrentRow() FrameBound { return FrameBound{Kind: BoundOffset, Offset: 0} }

// UnboundedPreceding builds the symbolic UNBOUNDED PRECEDING bound.
func UnboundedPreceding() FrameBound { return FrameBound{Kind: BoundUnboundedPreceding} }

// UnboundedFollowing builds the symbolic UNBOUNDED FOLLOWING bound.
func UnboundedFollowing() FrameBound { return FrameBound{Kind: BoundUnboundedFollowing} }
