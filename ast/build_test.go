package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omniql-engine/relq/ast"
)

func TestBinaryCombinatorsWrapRawValues(t *testing.T) {
	got := ast.Eq(ast.Col("users", "age"), 21)
	want := ast.BinaryOp{
		Op:   ast.OpEq,
		Left: ast.ColRef{Table: "users", Column: "age"},
		Right: ast.Literal{Value: 21},
	}
	assert.Equal(t, want, got)
}

func TestBetweenAndInList(t *testing.T) {
	between := ast.Between(ast.Col("orders", "total"), 10, 100)
	assert.Equal(t, ast.BetweenOp{
		Expr: ast.ColRef{Table: "orders", Column: "total"},
		Low:  ast.Literal{Value: 10},
		High: ast.Literal{Value: 100},
	}, between)

	in := ast.InList(ast.Col("orders", "status"), "open", "pending")
	assert.Equal(t, ast.InOp{
		Expr:   ast.ColRef{Table: "orders", Column: "status"},
		Values: []ast.Expr{ast.Literal{Value: "open"}, ast.Literal{Value: "pending"}},
	}, in)
}

func TestCaseBuilder(t *testing.T) {
	got := ast.Case().
		When(ast.Eq(ast.Col("t", "x"), 1), "one").
		When(ast.Eq(ast.Col("t", "x"), 2), "two").
		Else("other").
		End()

	want := ast.CaseExpr{
		Whens: []ast.CaseWhen{
			{Cond: ast.Eq(ast.Col("t", "x"), 1), Result: ast.Literal{Value: "one"}},
			{Cond: ast.Eq(ast.Col("t", "x"), 2), Result: ast.Literal{Value: "two"}},
		},
		Else: ast.Literal{Value: "other"},
	}
	assert.Equal(t, want, got)
}

func TestWindowBuilder(t *testing.T) {
	got := ast.Window("RANK").
		PartitionBy(ast.Col("t", "dept")).
		OrderBy(ast.Col("t", "salary"), true).
		Build()

	want := ast.WindowFunc{
		Name: "RANK",
		Over: ast.Over{
			PartitionBy: []ast.Expr{ast.ColRef{Table: "t", Column: "dept"}},
			OrderBy:     []ast.WindowOrder{{Expr: ast.ColRef{Table: "t", Column: "salary"}, Desc: true}},
		},
	}
	assert.Equal(t, want, got)
}
