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
	"github.com/omniql-engine/relq/rqerrors"
)

// scenario1And2 builds from(users) |> where(users.id = param(Int,:uid))
// |> select({id, email}), shared between the SQLite and PostgreSQL cases.
func selectByIDQuery() ast.Query {
	return ast.Select{
		Source: ast.Where{
			Source:    ast.From{Table: "users"},
			Condition: ast.Eq(ast.Col("users", "id"), ast.P("integer", "uid")),
		},
		Fields: []ast.SelectField{
			{Expr: ast.Col("users", "id")},
			{Expr: ast.Col("users", "email")},
		},
	}
}

func TestScenario1SQLite(t *testing.T) {
	c := compiler.New(sqlite.New(""))
	sql, params, err := c.Compile(selectByIDQuery())
	require.NoError(t, err)
	assert.Equal(t, "SELECT `users`.`id`, `users`.`email` FROM `users` WHERE (`users`.`id` = ?)", sql)
	assert.Equal(t, []string{"uid"}, params)
}

func TestScenario2PostgreSQL(t *testing.T) {
	c := compiler.New(postgres.New())
	sql, params, err := c.Compile(selectByIDQuery())
	require.NoError(t, err)
	assert.Equal(t, `SELECT "users"."id", "users"."email" FROM "users" WHERE ("users"."id" = $1)`, sql)
	assert.Equal(t, []string{"uid"}, params)
}

func TestScenario3MySQLConjunction(t *testing.T) {
	q := ast.Where{
		Source: ast.From{Table: "users"},
		Condition: ast.And(
			ast.Gt(ast.Col("users", "age"), ast.P("integer", "min")),
			ast.Eq(ast.Col("users", "email"), ast.P("text", "e")),
		),
	}
	c := compiler.New(mysql.New(""))
	sql, params, err := c.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users` WHERE ((`users`.`age` > ?) AND (`users`.`email` = ?))", sql)
	assert.Equal(t, []string{"min", "e"}, params)
}

func TestScenario4SQLiteInsertWithEscapedLiteral(t *testing.T) {
	q := ast.InsertValues{
		Source: ast.InsertInto{Table: "users", Columns: []string{"name", "email"}},
		Rows: [][]ast.Expr{
			{ast.Literal{Value: "O'Brien"}, ast.P("text", "em")},
		},
	}
	c := compiler.New(sqlite.New(""))
	sql, params, err := c.Compile(q)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `users` (`name`, `email`) VALUES ('O''Brien', ?)", sql)
	assert.Equal(t, []string{"em"}, params)
}

func TestScenario5SQLiteILikeEmulation(t *testing.T) {
	q := ast.Where{
		Source:    ast.From{Table: "users"},
		Condition: ast.ILike(ast.Col("users", "email"), "%@X.COM"),
	}
	c := compiler.New(sqlite.New(""))
	sql, params, err := c.Compile(q)
	require.NoError(t, err)
	assert.Contains(t, sql, "UPPER(`users`.`email`) LIKE UPPER('%@X.COM')")
	assert.Empty(t, params)
	require.Len(t, c.Warnings, 1)
}

func TestIntersectExceptAllEmitsALLKeyword(t *testing.T) {
	left := ast.From{Table: "customers"}
	right := ast.From{Table: "prospects"}
	c := compiler.New(sqlite.New(""))

	sql, _, err := c.Compile(ast.SetIntersect{Left: left, Right: right, All: true})
	require.NoError(t, err)
	assert.Contains(t, sql, "INTERSECT ALL")

	sql, _, err = c.Compile(ast.SetIntersect{Left: left, Right: right})
	require.NoError(t, err)
	assert.NotContains(t, sql, "ALL")
	assert.Contains(t, sql, "INTERSECT")

	sql, _, err = c.Compile(ast.SetExcept{Left: left, Right: right, All: true})
	require.NoError(t, err)
	assert.Contains(t, sql, "EXCEPT ALL")

	sql, _, err = c.Compile(ast.SetExcept{Left: left, Right: right})
	require.NoError(t, err)
	assert.NotContains(t, sql, "ALL")
	assert.Contains(t, sql, "EXCEPT")
}

func TestScenario6MySQL57RejectsCTE(t *testing.T) {
	active := ast.Where{
		Source:    ast.From{Table: "users"},
		Condition: ast.Eq(ast.Col("users", "active"), true),
	}
	main := ast.Select{
		Source: ast.From{Table: "active"},
		Fields: []ast.SelectField{{Expr: ast.Col("active", "email")}},
	}
	q := ast.With{
		Ctes: []ast.Cte{{Name: "active", Query: active}},
		Main: main,
	}
	c := compiler.New(mysql.New("5.7.0"))
	_, _, err := c.Compile(q)
	require.Error(t, err)
	var compileErr *rqerrors.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, rqerrors.Unsupported, compileErr.Kind)
	assert.Equal(t, "CTE", compileErr.Capability)
}
