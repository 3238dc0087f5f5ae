package ast

// Query is the closed sum type for relational query-building steps.
// Each step wraps its predecessor, so the tree's shape mirrors SQL's
// logical evaluation order: From -> Join -> Where -> GroupBy -> Having
// -> Select -> Distinct -> OrderBy -> Limit -> Offset. It is shape-
// erased: the output-row type lives only in the builder package
// (query.SelectBuilder[T] and its DML counterparts), never in this
// tree, so Subquery can embed a
// Query without creating a generic/import cycle with the builder.
type Query interface {
	queryNode()
}

// From is the root of every SELECT-shaped pipeline: the single source
// table before any joins or filters are applied.
type From struct {
	Table string
}

func (From) queryNode() {}

// Where filters rows produced by Source.
type Where struct {
	Source    Query
	Condition Expr
}

func (Where) queryNode() {}

// JoinKind enumerates the supported join types.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinFull  JoinKind = "FULL"
)

// Join adds a joined table to Source.
type Join struct {
	Source Query
	Table  string
	On     Expr
	Kind   JoinKind
}

func (Join) queryNode() {}

// Ordering is one ORDER BY entry.
type Ordering struct {
	Expr Expr
	Desc bool
}

// OrderBy sorts rows produced by Source.
type OrderBy struct {
	Source    Query
	Orderings []Ordering
}

func (OrderBy) queryNode() {}

// Limit caps the number of rows produced by Source.
type Limit struct {
	Source Query
	N      int
}

func (Limit) queryNode() {}

// Offset skips N rows produced by Source.
type Offset struct {
	Source Query
	N      int
}

func (Offset) queryNode() {}

// Distinct deduplicates rows produced by Source.
type Distinct struct {
	Source Query
}

func (Distinct) queryNode() {}

// GroupBy groups rows produced by Source. An empty Fields list is
// permitted and is treated by the compiler as an identity operation.
type GroupBy struct {
	Source Query
	Fields []Expr
}

func (GroupBy) queryNode() {}

// Having filters grouped rows produced by Source.
type Having struct {
	Source    Query
	Condition Expr
}

func (Having) queryNode() {}

// SelectField is one projected column, with an optional alias.
type SelectField struct {
	Expr  Expr
	Alias string
}

// Select projects Source onto Fields, changing the output shape. An
// empty Fields list is permitted and is treated by the compiler as an
// identity operation (the predecessor's projection is left in place).
type Select struct {
	Source Query
	Fields []SelectField
}

func (Select) queryNode() {}

// InsertInto names the target table and column list of an insert
// pipeline; InsertValues must follow it.
type InsertInto struct {
	Table   string
	Columns []string
}

func (InsertInto) queryNode() {}

// InsertValues supplies one or more value rows for the preceding
// InsertInto (or OnConflict wrapping one).
type InsertValues struct {
	Source Query
	Rows   [][]Expr
}

func (InsertValues) queryNode() {}

// Update names the target table of an update pipeline; UpdateSet must
// follow it.
type Update struct {
	Table string
}

func (Update) queryNode() {}

// Assignment is one column = expr pair of an UpdateSet.
type Assignment struct {
	Column string
	Value  Expr
}

// UpdateSet supplies the assignment list for the preceding Update.
type UpdateSet struct {
	Source      Query
	Assignments []Assignment
}

func (UpdateSet) queryNode() {}

// UpdateWhere filters which rows an UpdateSet applies to.
type UpdateWhere struct {
	Source    Query
	Condition Expr
}

func (UpdateWhere) queryNode() {}

// DeleteFrom names the target table of a delete pipeline; DeleteWhere
// must follow it.
type DeleteFrom struct {
	Table string
}

func (DeleteFrom) queryNode() {}

// DeleteWhere filters which rows a DeleteFrom removes.
type DeleteWhere struct {
	Source    Query
	Condition Expr
}

func (DeleteWhere) queryNode() {}

// Returning wraps any DML form, changing the output shape to the
// returned row. Capability-gated: the compiler rejects it when the
// target dialect does not advertise RETURNING support.
type Returning struct {
	Source Query
	Fields []SelectField
}

func (Returning) queryNode() {}

// Cte is one named member of a With's CTE list.
type Cte struct {
	Name    string
	Query   Query
	Columns []string // optional explicit column list
}

// With wraps a main query with one or more common table expressions.
// Recursive resolves the open question in spec.md §9: when true and
// the dialect supports CTEs, the compiler emits WITH RECURSIVE.
type With struct {
	Ctes      []Cte
	Main      Query
	Recursive bool
}

func (With) queryNode() {}

// SetUnion represents Left UNION [ALL] Right.
type SetUnion struct {
	Left, Right Query
	All         bool
}

func (SetUnion) queryNode() {}

// SetIntersect represents Left INTERSECT [ALL] Right.
type SetIntersect struct {
	Left, Right Query
	All         bool
}

func (SetIntersect) queryNode() {}

// SetExcept represents Left EXCEPT [ALL] Right.
type SetExcept struct {
	Left, Right Query
	All         bool
}

func (SetExcept) queryNode() {}

// ConflictAction enumerates the two UPSERT behaviors.
type ConflictAction string

const (
	DoNothing ConflictAction = "DO_NOTHING"
	DoUpdate  ConflictAction = "DO_UPDATE"
)

// OnConflict wraps an insert pipeline with UPSERT semantics.
// Capability-gated.
type OnConflict struct {
	Source      Query
	TargetCols  []string
	Action      ConflictAction
	Updates     []Assignment
	WhereClause Expr // optional filter on DO UPDATE
}

func (OnConflict) queryNode() {}
