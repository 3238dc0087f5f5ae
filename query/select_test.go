package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/query"
)

type userRow struct {
	ID    int64
	Email string
}

func TestSelectPipelineShape(t *testing.T) {
	b := query.From("users").
		Where(ast.Eq(ast.Col("users", "id"), ast.P("integer", "uid"))).
		OrderBy(query.Asc(ast.Col("users", "id"))).
		Limit(10)

	got := query.Select[userRow](b,
		query.F(ast.Col("users", "id")),
		query.FAs(ast.Col("users", "email"), "contact_email"),
	)

	from, ok := got.Node.(ast.Select).Source.(ast.Limit).Source.(ast.OrderBy).Source.(ast.Where).Source.(ast.From)
	assert.True(t, ok)
	assert.Equal(t, "users", from.Table)

	sel, ok := got.Node.(ast.Select)
	assert.True(t, ok)
	assert.Len(t, sel.Fields, 2)
	assert.Equal(t, "contact_email", sel.Fields[1].Alias)
}

func TestJoinVariants(t *testing.T) {
	b := query.From("orders").
		InnerJoin("users", ast.Eq(ast.Col("orders", "user_id"), ast.Col("users", "id"))).
		LeftJoin("coupons", ast.Eq(ast.Col("orders", "coupon_id"), ast.Col("coupons", "id")))

	left, ok := b.Node.(ast.Join)
	assert.True(t, ok)
	assert.Equal(t, ast.JoinLeft, left.Kind)

	inner, ok := left.Source.(ast.Join)
	assert.True(t, ok)
	assert.Equal(t, ast.JoinInner, inner.Kind)
}

func TestDistinctWrapsEmptyGroupBy(t *testing.T) {
	b := query.From("events").GroupBy().Distinct()
	groupBy, ok := b.Node.(ast.Distinct).Source.(ast.GroupBy)
	assert.True(t, ok)
	assert.Empty(t, groupBy.Fields)
}
