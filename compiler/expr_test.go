package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/compiler"
	"github.com/omniql-engine/relq/dialect/mysql"
	"github.com/omniql-engine/relq/dialect/postgres"
	"github.com/omniql-engine/relq/dialect/sqlite"
)

func TestNotEqualEmitsBangEquals(t *testing.T) {
	q := ast.Where{
		Source:    ast.From{Table: "users"},
		Condition: ast.Neq(ast.Col("users", "id"), ast.P("integer", "id")),
	}
	sql, _, err := compiler.New(sqlite.New("")).Compile(q)
	require.NoError(t, err)
	assert.Contains(t, sql, "!=")
	assert.NotContains(t, sql, "<>")
}

func TestILikeIsParenthesizedLikeOtherBinaryOps(t *testing.T) {
	// PostgreSQL has native ILIKE; the non-rewritten path should still
	// get the same surrounding parens every other BinaryOp gets.
	q := ast.Where{
		Source:    ast.From{Table: "users"},
		Condition: ast.ILike(ast.Col("users", "email"), "%@x.com"),
	}
	sql, _, err := compiler.New(postgres.New()).Compile(q)
	require.NoError(t, err)
	assert.Contains(t, sql, `("users"."email" ILIKE '%@x.com')`)
}

func TestILikeRewriteIsParenthesized(t *testing.T) {
	q := ast.Where{
		Source:    ast.From{Table: "users"},
		Condition: ast.ILike(ast.Col("users", "email"), "%@x.com"),
	}
	sql, _, err := compiler.New(mysql.New("")).Compile(q)
	require.NoError(t, err)
	assert.Contains(t, sql, "(UPPER(`users`.`email`) LIKE UPPER('%@x.com'))")
}
