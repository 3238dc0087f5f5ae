package query

import "github.com/omniql-engine/relq/ast"

// InsertBuilder wraps the INSERT pipeline: InsertInto -> Values ->
// optional OnConflict -> optional Returning.
type InsertBuilder[T any] struct {
	Node ast.Query
}

// InsertInto starts an insert pipeline naming the target table and
// column list.
func InsertInto(table string, columns ...string) InsertBuilder[AnonRow] {
	return InsertBuilder[AnonRow]{Node: ast.InsertInto{Table: table, Columns: columns}}
}

// Values supplies one or more value rows.
func (b InsertBuilder[T]) Values(rows ...[]ast.Expr) InsertBuilder[T] {
	return InsertBuilder[T]{Node: ast.InsertValues{Source: b.Node, Rows: rows}}
}

// Row builds one value row from raw args, wrapping non-Expr values as
// literals.
func Row(vals ...any) []ast.Expr {
	out := make([]ast.Expr, len(vals))
	for i, v := range vals {
		if e, ok := v.(ast.Expr); ok {
			out[i] = e
		} else {
			out[i] = ast.Literal{Value: v}
		}
	}
	return out
}

// OnConflictDoNothing wraps the insert with ON CONFLICT (targetCols)
// DO NOTHING.
func (b InsertBuilder[T]) OnConflictDoNothing(targetCols ...string) InsertBuilder[T] {
	return InsertBuilder[T]{Node: ast.OnConflict{
		Source:     b.Node,
		TargetCols: targetCols,
		Action:     ast.DoNothing,
	}}
}

// OnConflictDoUpdate wraps the insert with ON CONFLICT (targetCols) DO
// UPDATE SET ... [WHERE ...].
func (b InsertBuilder[T]) OnConflictDoUpdate(targetCols []string, updates []ast.Assignment, where ast.Expr) InsertBuilder[T] {
	return InsertBuilder[T]{Node: ast.OnConflict{
		Source:      b.Node,
		TargetCols:  targetCols,
		Action:      ast.DoUpdate,
		Updates:     updates,
		WhereClause: where,
	}}
}

// ReturningInsert wraps the insert pipeline with a RETURNING clause,
// changing the output shape to U. Capability-gated at compile time.
func ReturningInsert[U any, T any](b InsertBuilder[T], fields ...ast.SelectField) InsertBuilder[U] {
	return InsertBuilder[U]{Node: ast.Returning{Source: b.Node, Fields: fields}}
}

// UpdateBuilder wraps the UPDATE pipeline: Update -> Set -> Where ->
// optional Returning.
type UpdateBuilder[T any] struct {
	Node ast.Query
}

// UpdateTable starts an update pipeline naming the target table.
func UpdateTable(table string) UpdateBuilder[AnonRow] {
	return UpdateBuilder[AnonRow]{Node: ast.Update{Table: table}}
}

// Set supplies the column = expr assignment list.
func (b UpdateBuilder[T]) Set(assignments ...ast.Assignment) UpdateBuilder[T] {
	return UpdateBuilder[T]{Node: ast.UpdateSet{Source: b.Node, Assignments: assignments}}
}

// Assign builds one column = expr assignment, wrapping raw values as
// literals.
func Assign(column string, value any) ast.Assignment {
	if e, ok := value.(ast.Expr); ok {
		return ast.Assignment{Column: column, Value: e}
	}
	return ast.Assignment{Column: column, Value: ast.Literal{Value: value}}
}

// Where filters which rows the preceding Set applies to.
func (b UpdateBuilder[T]) Where(cond ast.Expr) UpdateBuilder[T] {
	return UpdateBuilder[T]{Node: ast.UpdateWhere{Source: b.Node, Condition: cond}}
}

// ReturningUpdate wraps the update pipeline with RETURNING, changing
// the output shape to U.
func ReturningUpdate[U any, T any](b UpdateBuilder[T], fields ...ast.SelectField) UpdateBuilder[U] {
	return UpdateBuilder[U]{Node: ast.Returning{Source: b.Node, Fields: fields}}
}

// DeleteBuilder wraps the DELETE pipeline: DeleteFrom -> Where ->
// optional Returning.
type DeleteBuilder[T any] struct {
	Node ast.Query
}

// DeleteFrom starts a delete pipeline naming the target table.
func DeleteFrom(table string) DeleteBuilder[AnonRow] {
	return DeleteBuilder[AnonRow]{Node: ast.DeleteFrom{Table: table}}
}

// Where filters which rows the delete removes.
func (b DeleteBuilder[T]) Where(cond ast.Expr) DeleteBuilder[T] {
	return DeleteBuilder[T]{Node: ast.DeleteWhere{Source: b.Node, Condition: cond}}
}

// ReturningDelete wraps the delete pipeline with RETURNING, changing
// the output shape to U.
func ReturningDelete[U any, T any](b DeleteBuilder[T], fields ...ast.SelectField) DeleteBuilder[U] {
	return DeleteBuilder[U]{Node: ast.Returning{Source: b.Node, Fields: fields}}
}
