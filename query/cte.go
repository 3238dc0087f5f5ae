package query

import "github.com/omniql-engine/relq/ast"

// NamedQuery pairs a CTE name (and optional column aliases) with the
// query that populates it.
type NamedQuery struct {
	Name    string
	Columns []string
	Node    ast.Query
}

// As names a builder's query for use inside a With clause.
func As[T any](name string, b SelectBuilder[T], columns ...string) NamedQuery {
	return NamedQuery{Name: name, Columns: columns, Node: b.Node}
}

// With prefixes a main query with one or more non-recursive CTEs.
func With[T any](main SelectBuilder[T], ctes ...NamedQuery) SelectBuilder[T] {
	return SelectBuilder[T]{Node: buildWith(main.Node, ctes, false)}
}

// WithRecursive prefixes a main query with one or more CTEs, at least
// one of which refers to itself, emitting WITH RECURSIVE when the
// target dialect supports it.
func WithRecursive[T any](main SelectBuilder[T], ctes ...NamedQuery) SelectBuilder[T] {
	return SelectBuilder[T]{Node: buildWith(main.Node, ctes, true)}
}

func buildWith(main ast.Query, ctes []NamedQuery, recursive bool) ast.Query {
	built := make([]ast.Cte, len(ctes))
	for i, c := range ctes {
		built[i] = ast.Cte{Name: c.Name, Query: c.Node, Columns: c.Columns}
	}
	return ast.With{Ctes: built, Main: main, Recursive: recursive}
}

// Union combines two SELECT pipelines with UNION (duplicates removed).
func Union[T any](left, right SelectBuilder[T]) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.SetUnion{Left: left.Node, Right: right.Node, All: false}}
}

// UnionAll combines two SELECT pipelines with UNION ALL (duplicates
// retained).
func UnionAll[T any](left, right SelectBuilder[T]) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.SetUnion{Left: left.Node, Right: right.Node, All: true}}
}

// Intersect combines two SELECT pipelines with INTERSECT (duplicates
// removed). Capability gated: MySQL rejects this at compile time on
// every version.
func Intersect[T any](left, right SelectBuilder[T]) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.SetIntersect{Left: left.Node, Right: right.Node, All: false}}
}

// IntersectAll combines two SELECT pipelines with INTERSECT ALL
// (duplicates retained). Capability gated the same way as Intersect.
func IntersectAll[T any](left, right SelectBuilder[T]) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.SetIntersect{Left: left.Node, Right: right.Node, All: true}}
}

// Except combines two SELECT pipelines with EXCEPT (duplicates
// removed). Capability gated the same way as Intersect.
func Except[T any](left, right SelectBuilder[T]) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.SetExcept{Left: left.Node, Right: right.Node, All: false}}
}

// ExceptAll combines two SELECT pipelines with EXCEPT ALL (duplicates
// retained). Capability gated the same way as Intersect.
func ExceptAll[T any](left, right SelectBuilder[T]) SelectBuilder[T] {
	return SelectBuilder[T]{Node: ast.SetExcept{Left: left.Node, Right: right.Node, All: true}}
}
