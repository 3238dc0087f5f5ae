package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/query"
)

func TestInsertPipelineWithOnConflictAndReturning(t *testing.T) {
	ins := query.InsertInto("users", "name", "email").
		Values(query.Row("ada", "ada@example.com")).
		OnConflictDoUpdate([]string{"email"}, []ast.Assignment{
			query.Assign("name", "ada"),
		}, nil)

	returned := query.ReturningInsert[userRow](ins, query.F(ast.Col("users", "id")))

	ret, ok := returned.Node.(ast.Returning)
	require.True(t, ok)
	conflict, ok := ret.Source.(ast.OnConflict)
	require.True(t, ok)
	assert.Equal(t, ast.DoUpdate, conflict.Action)
	assert.Equal(t, []string{"email"}, conflict.TargetCols)

	values, ok := conflict.Source.(ast.InsertValues)
	require.True(t, ok)
	require.Len(t, values.Rows, 1)
	assert.Equal(t, ast.Literal{Value: "ada"}, values.Rows[0][0])
}

func TestUpdatePipeline(t *testing.T) {
	upd := query.UpdateTable("users").
		Set(query.Assign("name", "grace")).
		Where(ast.Eq(ast.Col("users", "id"), ast.P("integer", "uid")))

	where, ok := upd.Node.(ast.UpdateWhere)
	require.True(t, ok)
	set, ok := where.Source.(ast.UpdateSet)
	require.True(t, ok)
	assert.Equal(t, "name", set.Assignments[0].Column)
}

func TestDeletePipeline(t *testing.T) {
	del := query.DeleteFrom("sessions").
		Where(ast.IsNotNull(ast.Col("sessions", "expired_at")))

	where, ok := del.Node.(ast.DeleteWhere)
	require.True(t, ok)
	_, ok = where.Source.(ast.DeleteFrom)
	require.True(t, ok)
}
