package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/query"
)

func TestWithBuildsCteList(t *testing.T) {
	active := query.From("users").Where(ast.Eq(ast.Col("users", "active"), true))
	main := query.From("active_users")

	got := query.With(main, query.As("active_users", active, "id", "email"))

	with, ok := got.Node.(ast.With)
	require.True(t, ok)
	require.Len(t, with.Ctes, 1)
	assert.Equal(t, "active_users", with.Ctes[0].Name)
	assert.Equal(t, []string{"id", "email"}, with.Ctes[0].Columns)
	assert.False(t, with.Recursive)
}

func TestWithRecursiveSetsFlag(t *testing.T) {
	base := query.From("tree")
	got := query.WithRecursive(base, query.As("tree", base))
	with, ok := got.Node.(ast.With)
	require.True(t, ok)
	assert.True(t, with.Recursive)
}

func TestSetOperations(t *testing.T) {
	left := query.From("customers")
	right := query.From("prospects")

	u := query.Union(left, right)
	union, ok := u.Node.(ast.SetUnion)
	require.True(t, ok)
	assert.False(t, union.All)

	ua := query.UnionAll(left, right)
	unionAll, ok := ua.Node.(ast.SetUnion)
	require.True(t, ok)
	assert.True(t, unionAll.All)

	i := query.Intersect(left, right)
	intersect, ok := i.Node.(ast.SetIntersect)
	require.True(t, ok)
	assert.False(t, intersect.All)

	ia := query.IntersectAll(left, right)
	intersectAll, ok := ia.Node.(ast.SetIntersect)
	require.True(t, ok)
	assert.True(t, intersectAll.All)

	e := query.Except(left, right)
	except, ok := e.Node.(ast.SetExcept)
	require.True(t, ok)
	assert.False(t, except.All)

	ea := query.ExceptAll(left, right)
	exceptAll, ok := ea.Node.(ast.SetExcept)
	require.True(t, ok)
	assert.True(t, exceptAll.All)
}
