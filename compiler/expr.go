package compiler

import (
	"fmt"
	"strings"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect"
	"github.com/omniql-engine/relq/rqerrors"
)

// compileExpr renders e as a SQL fragment, appending to ctx.paramNames
// for every Param encountered in left-to-right, depth-first order.
func (c *Compiler) compileExpr(e ast.Expr, ctx *context) (string, error) {
	switch v := e.(type) {
	case ast.ColRef:
		return c.quote(v.Table) + "." + c.quote(v.Column), nil

	case ast.Literal:
		return c.D.EncodeLiteral(v.Value)

	case ast.Param:
		*ctx.paramNames = append(*ctx.paramNames, v.Name)
		return c.D.Placeholder(len(*ctx.paramNames)), nil

	case ast.PlaceholderField:
		if !ctx.primaryTableOK {
			return "", rqerrors.NewUnresolvedPlaceholder(fmt.Sprintf("field %q has no single unambiguous source table", v.Column))
		}
		return c.compileExpr(ast.ColRef{Table: ctx.primaryTable, Column: v.Column}, ctx)

	case ast.RawExpr:
		if !identifierSafe(v.SQL) {
			c.warn("raw expression %q contains characters outside the identifier-safe allowlist; emitted verbatim", v.SQL)
		}
		return v.SQL, nil

	case ast.UnaryOp:
		return c.compileUnary(v, ctx)

	case ast.BinaryOp:
		return c.compileBinary(v, ctx)

	case ast.FuncCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			s, err := c.compileExpr(a, ctx)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return fmt.Sprintf("%s(%s)", v.Name, strings.Join(args, ", ")), nil

	case ast.BetweenOp:
		expr, err := c.compileExpr(v.Expr, ctx)
		if err != nil {
			return "", err
		}
		low, err := c.compileExpr(v.Low, ctx)
		if err != nil {
			return "", err
		}
		high, err := c.compileExpr(v.High, ctx)
		if err != nil {
			return "", err
		}
		op := "BETWEEN"
		if v.Negated {
			op = "NOT BETWEEN"
		}
		return fmt.Sprintf("%s %s %s AND %s", expr, op, low, high), nil

	case ast.InOp:
		return c.compileIn(v, ctx)

	case ast.Cast:
		expr, err := c.compileExpr(v.Expr, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CAST(%s AS %s)", expr, v.TargetType), nil

	case ast.Subquery:
		body, err := c.compileTop(v.Query, ctx)
		if err != nil {
			return "", err
		}
		return "(" + body + ")", nil

	case ast.CaseExpr:
		return c.compileCase(v, ctx)

	case ast.WindowFunc:
		return c.compileWindowFunc(v, ctx)

	default:
		return "", rqerrors.NewUnsupported("EXPR", fmt.Sprintf("unrecognized expression node %T", e))
	}
}

func (c *Compiler) compileUnary(v ast.UnaryOp, ctx *context) (string, error) {
	switch v.Op {
	case ast.OpNot:
		operand, err := c.compileExpr(v.Operand, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", operand), nil
	case ast.OpIsNull:
		operand, err := c.compileExpr(v.Operand, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s IS NULL", operand), nil
	case ast.OpIsNotNull:
		operand, err := c.compileExpr(v.Operand, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s IS NOT NULL", operand), nil
	case ast.OpExists:
		operand, err := c.compileExpr(v.Operand, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXISTS %s", operand), nil
	case ast.OpNotExists:
		operand, err := c.compileExpr(v.Operand, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT EXISTS %s", operand), nil
	default:
		return "", rqerrors.NewUnsupported("EXPR", fmt.Sprintf("unrecognized unary operator %v", v.Op))
	}
}

var binaryKeyword = map[ast.BinaryOperator]string{
	ast.OpEq: "=", ast.OpNeq: "!=", ast.OpLt: "<", ast.OpGt: ">",
	ast.OpLte: "<=", ast.OpGte: ">=", ast.OpAnd: "AND", ast.OpOr: "OR",
	ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/",
	ast.OpLike: "LIKE", ast.OpNotLike: "NOT LIKE",
}

func (c *Compiler) compileBinary(v ast.BinaryOp, ctx *context) (string, error) {
	if v.Op == ast.OpILike || v.Op == ast.OpNotILike {
		left, err := c.compileExpr(v.Left, ctx)
		if err != nil {
			return "", err
		}
		right, err := c.compileExpr(v.Right, ctx)
		if err != nil {
			return "", err
		}
		if !c.D.Supports(dialect.CapILike) {
			rewritten, ok := c.D.RewriteILike(v.Op == ast.OpNotILike, left, right)
			if ok {
				c.warn("rewrote ILIKE as UPPER()-based comparison for %s", c.D.Name())
				return "(" + rewritten + ")", nil
			}
		}
		kw := "ILIKE"
		if v.Op == ast.OpNotILike {
			kw = "NOT ILIKE"
		}
		return fmt.Sprintf("(%s %s %s)", left, kw, right), nil
	}

	kw, ok := binaryKeyword[v.Op]
	if !ok {
		return "", rqerrors.NewUnsupported("EXPR", fmt.Sprintf("unrecognized binary operator %v", v.Op))
	}
	left, err := c.compileExpr(v.Left, ctx)
	if err != nil {
		return "", err
	}
	right, err := c.compileExpr(v.Right, ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", left, kw, right), nil
}

func (c *Compiler) compileIn(v ast.InOp, ctx *context) (string, error) {
	expr, err := c.compileExpr(v.Expr, ctx)
	if err != nil {
		return "", err
	}
	kw := "IN"
	if v.Negated {
		kw = "NOT IN"
	}
	if v.Subquery != nil {
		sub, err := c.compileExpr(*v.Subquery, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", expr, kw, sub), nil
	}
	if len(v.Values) == 0 {
		if v.Negated {
			return "1 = 1", nil
		}
		return "1 = 0", nil
	}
	values := make([]string, len(v.Values))
	for i, val := range v.Values {
		s, err := c.compileExpr(val, ctx)
		if err != nil {
			return "", err
		}
		values[i] = s
	}
	return fmt.Sprintf("%s %s (%s)", expr, kw, strings.Join(values, ", ")), nil
}

func (c *Compiler) compileCase(v ast.CaseExpr, ctx *context) (string, error) {
	if len(v.Whens) == 0 {
		return "", rqerrors.NewEmptyStructure("CASE expression has no WHEN branches")
	}
	var b strings.Builder
	b.WriteString("CASE")
	for _, w := range v.Whens {
		cond, err := c.compileExpr(w.Cond, ctx)
		if err != nil {
			return "", err
		}
		result, err := c.compileExpr(w.Result, ctx)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " WHEN %s THEN %s", cond, result)
	}
	if v.Else != nil {
		els, err := c.compileExpr(v.Else, ctx)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " ELSE %s", els)
	}
	b.WriteString(" END")
	return b.String(), nil
}

func (c *Compiler) compileWindowFunc(v ast.WindowFunc, ctx *context) (string, error) {
	if !c.D.Supports(dialect.CapWindow) {
		return "", rqerrors.NewUnsupported(string(dialect.CapWindow), "window functions are not supported by "+c.D.Name())
	}
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		s, err := c.compileExpr(a, ctx)
		if err != nil {
			return "", err
		}
		args[i] = s
	}
	var over strings.Builder
	if len(v.Over.PartitionBy) > 0 {
		parts := make([]string, len(v.Over.PartitionBy))
		for i, p := range v.Over.PartitionBy {
			s, err := c.compileExpr(p, ctx)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		over.WriteString("PARTITION BY " + strings.Join(parts, ", "))
	}
	if len(v.Over.OrderBy) > 0 {
		if over.Len() > 0 {
			over.WriteString(" ")
		}
		orderings := make([]string, len(v.Over.OrderBy))
		for i, o := range v.Over.OrderBy {
			s, err := c.compileExpr(o.Expr, ctx)
			if err != nil {
				return "", err
			}
			if o.Desc {
				s += " DESC"
			} else {
				s += " ASC"
			}
			orderings[i] = s
		}
		over.WriteString("ORDER BY " + strings.Join(orderings, ", "))
	}
	if v.Over.Frame != nil {
		frame, err := c.compileFrame(*v.Over.Frame)
		if err != nil {
			return "", err
		}
		if over.Len() > 0 {
			over.WriteString(" ")
		}
		over.WriteString(frame)
	}
	return fmt.Sprintf("%s(%s) OVER (%s)", v.Name, strings.Join(args, ", "), over.String()), nil
}

func (c *Compiler) compileFrame(f ast.Frame) (string, error) {
	mode := "ROWS"
	if f.Mode == ast.FrameRange {
		mode = "RANGE"
	} else if f.Mode == ast.FrameGroups {
		mode = "GROUPS"
	}
	start, err := frameBoundSQL(f.Start)
	if err != nil {
		return "", err
	}
	if f.End == nil {
		return fmt.Sprintf("%s %s", mode, start), nil
	}
	end, err := frameBoundSQL(*f.End)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s BETWEEN %s AND %s", mode, start, end), nil
}

func frameBoundSQL(b ast.FrameBound) (string, error) {
	switch b.Kind {
	case ast.BoundUnboundedPreceding:
		return "UNBOUNDED PRECEDING", nil
	case ast.BoundUnboundedFollowing:
		return "UNBOUNDED FOLLOWING", nil
	case ast.BoundOffset:
		switch {
		case b.Offset == 0:
			return "CURRENT ROW", nil
		case b.Offset < 0:
			return fmt.Sprintf("%d PRECEDING", -b.Offset), nil
		default:
			return fmt.Sprintf("%d FOLLOWING", b.Offset), nil
		}
	default:
		return "", rqerrors.NewUnsupported("EXPR", "unrecognized frame bound kind")
	}
}

// identifierSafe reports whether s contains only characters that can
// never change a statement's shape when spliced in verbatim: letters,
// digits, spaces, and a narrow set of SQL punctuation. It does not
// reject every dangerous string — RawExpr is an explicit escape hatch —
// it only flags the common case of accidentally interpolated user input
// so compile-time Warnings can surface it.
func identifierSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '(' || r == ')' || r == ' ' ||
			r == '*' || r == ',' || r == '\'' || r == '-' || r == '+' ||
			r == '/' || r == '%' || r == '=' || r == '<' || r == '>' || r == '!':
		default:
			return false
		}
	}
	return true
}
