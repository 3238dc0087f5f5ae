package compiler

import (
	"fmt"
	"strings"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect"
	"github.com/omniql-engine/relq/rqerrors"
)

// stmt accumulates the rendered clauses of a single SELECT/INSERT/
// UPDATE/DELETE pipeline as buildStmt walks bottom-up from the root
// (From/InsertInto/Update/DeleteFrom) back out to the outermost
// wrapper. This is the "intermediate selectList" design: DISTINCT and
// the projected field list are composed directly into one SELECT
// clause rather than spliced into a predecessor's rendered string.
type stmt struct {
	kind string // "select", "insert", "update", "delete"

	// select
	fromSQL    string
	whereSQL   string
	groupBy    []string
	havingSQL  string
	distinct   bool
	fields     []string // rendered "expr [AS alias]"; nil means "*"
	orderBy    []string
	limit      *int
	offset     *int

	// insert
	table   string
	columns []string
	rows    [][]string

	// update
	assignments []string

	// shared by insert/update/delete
	conflict     *conflictClause
	returningSQL []string
}

type conflictClause struct {
	targetCols []string
	action     ast.ConflictAction
	updates    []string
	whereSQL   string
}

func (c *Compiler) buildStmt(q ast.Query, ctx *context) (*stmt, error) {
	switch n := q.(type) {
	case ast.From:
		return &stmt{kind: "select", fromSQL: c.quote(n.Table)}, nil

	case ast.Join:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		if n.Kind == ast.JoinFull && !c.D.Supports(dialect.CapFullJoin) {
			return nil, rqerrors.NewUnsupported(string(dialect.CapFullJoin), "FULL JOIN is not supported by "+c.D.Name())
		}
		on, err := c.compileExpr(n.On, ctx)
		if err != nil {
			return nil, err
		}
		s.fromSQL = fmt.Sprintf("%s %s JOIN %s ON %s", s.fromSQL, n.Kind, c.quote(n.Table), on)
		return s, nil

	case ast.Where:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		cond, err := c.compileExpr(n.Condition, ctx)
		if err != nil {
			return nil, err
		}
		s.whereSQL = andWith(s.whereSQL, cond)
		return s, nil

	case ast.GroupBy:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			rendered, err := c.compileExpr(f, ctx)
			if err != nil {
				return nil, err
			}
			fields[i] = rendered
		}
		if len(fields) > 0 {
			s.groupBy = fields
		}
		return s, nil

	case ast.Having:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		cond, err := c.compileExpr(n.Condition, ctx)
		if err != nil {
			return nil, err
		}
		s.havingSQL = andWith(s.havingSQL, cond)
		return s, nil

	case ast.Select:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		if len(n.Fields) > 0 {
			fields, err := c.renderSelectFields(n.Fields, ctx)
			if err != nil {
				return nil, err
			}
			s.fields = fields
		}
		return s, nil

	case ast.Distinct:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		s.distinct = true
		return s, nil

	case ast.OrderBy:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		orderings := make([]string, len(n.Orderings))
		for i, o := range n.Orderings {
			rendered, err := c.compileExpr(o.Expr, ctx)
			if err != nil {
				return nil, err
			}
			if o.Desc {
				rendered += " DESC"
			} else {
				rendered += " ASC"
			}
			orderings[i] = rendered
		}
		s.orderBy = orderings
		return s, nil

	case ast.Limit:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		n2 := n.N
		s.limit = &n2
		return s, nil

	case ast.Offset:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		n2 := n.N
		s.offset = &n2
		return s, nil

	case ast.InsertInto:
		return &stmt{kind: "insert", table: n.Table, columns: n.Columns}, nil

	case ast.InsertValues:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		if len(n.Rows) == 0 {
			return nil, rqerrors.NewEmptyStructure("INSERT has no value rows")
		}
		rows := make([][]string, len(n.Rows))
		for i, row := range n.Rows {
			rendered := make([]string, len(row))
			for j, e := range row {
				v, err := c.compileExpr(e, ctx)
				if err != nil {
					return nil, err
				}
				rendered[j] = v
			}
			rows[i] = rendered
		}
		s.rows = rows
		return s, nil

	case ast.Update:
		return &stmt{kind: "update", table: n.Table}, nil

	case ast.UpdateSet:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		if len(n.Assignments) == 0 {
			return nil, rqerrors.NewEmptyStructure("UPDATE has no assignments")
		}
		assigns := make([]string, len(n.Assignments))
		for i, a := range n.Assignments {
			v, err := c.compileExpr(a.Value, ctx)
			if err != nil {
				return nil, err
			}
			assigns[i] = fmt.Sprintf("%s = %s", c.quote(a.Column), v)
		}
		s.assignments = assigns
		return s, nil

	case ast.UpdateWhere:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		cond, err := c.compileExpr(n.Condition, ctx)
		if err != nil {
			return nil, err
		}
		s.whereSQL = andWith(s.whereSQL, cond)
		return s, nil

	case ast.DeleteFrom:
		return &stmt{kind: "delete", table: n.Table}, nil

	case ast.DeleteWhere:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		cond, err := c.compileExpr(n.Condition, ctx)
		if err != nil {
			return nil, err
		}
		s.whereSQL = andWith(s.whereSQL, cond)
		return s, nil

	case ast.OnConflict:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		if !c.D.Supports(dialect.CapUpsert) {
			return nil, rqerrors.NewUnsupported(string(dialect.CapUpsert), "UPSERT is not supported by "+c.D.Name())
		}
		conflict := &conflictClause{targetCols: n.TargetCols, action: n.Action}
		if n.Action == ast.DoUpdate {
			if len(n.Updates) == 0 {
				return nil, rqerrors.NewEmptyStructure("ON CONFLICT DO UPDATE has no assignments")
			}
			updates := make([]string, len(n.Updates))
			for i, a := range n.Updates {
				v, err := c.compileExpr(a.Value, ctx)
				if err != nil {
					return nil, err
				}
				updates[i] = fmt.Sprintf("%s = %s", c.quote(a.Column), v)
			}
			conflict.updates = updates
			if n.WhereClause != nil {
				cond, err := c.compileExpr(n.WhereClause, ctx)
				if err != nil {
					return nil, err
				}
				conflict.whereSQL = cond
			}
		}
		s.conflict = conflict
		return s, nil

	case ast.Returning:
		s, err := c.buildStmt(n.Source, ctx)
		if err != nil {
			return nil, err
		}
		if !c.D.Supports(dialect.CapReturning) {
			return nil, rqerrors.NewUnsupported(string(dialect.CapReturning), "RETURNING is not supported by "+c.D.Name())
		}
		fields, err := c.renderSelectFields(n.Fields, ctx)
		if err != nil {
			return nil, err
		}
		s.returningSQL = fields
		return s, nil

	default:
		return nil, rqerrors.NewUnsupported("QUERY", fmt.Sprintf("unrecognized query node %T in statement context", q))
	}
}

func (c *Compiler) renderSelectFields(fields []ast.SelectField, ctx *context) ([]string, error) {
	out := make([]string, len(fields))
	for i, f := range fields {
		expr, err := c.compileExpr(f.Expr, ctx)
		if err != nil {
			return nil, err
		}
		if f.Alias != "" {
			expr += " AS " + c.quote(f.Alias)
		}
		out[i] = expr
	}
	return out, nil
}

func andWith(existing, next string) string {
	if existing == "" {
		return next
	}
	return fmt.Sprintf("(%s) AND (%s)", existing, next)
}

// assemble renders the accumulated stmt into final SQL text.
func (c *Compiler) assemble(s *stmt) (string, error) {
	switch s.kind {
	case "select":
		return c.assembleSelect(s)
	case "insert":
		return c.assembleInsert(s)
	case "update":
		return c.assembleUpdate(s)
	case "delete":
		return c.assembleDelete(s)
	default:
		return "", rqerrors.NewUnsupported("QUERY", "incomplete statement pipeline")
	}
}

func (c *Compiler) assembleSelect(s *stmt) (string, error) {
	if s.fromSQL == "" {
		return "", rqerrors.NewEmptyStructure("SELECT has no source table")
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.fields) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(s.fields, ", "))
	}
	fmt.Fprintf(&b, " FROM %s", s.fromSQL)
	if s.whereSQL != "" {
		fmt.Fprintf(&b, " WHERE %s", s.whereSQL)
	}
	if len(s.groupBy) > 0 {
		fmt.Fprintf(&b, " GROUP BY %s", strings.Join(s.groupBy, ", "))
	}
	if s.havingSQL != "" {
		fmt.Fprintf(&b, " HAVING %s", s.havingSQL)
	}
	if len(s.orderBy) > 0 {
		fmt.Fprintf(&b, " ORDER BY %s", strings.Join(s.orderBy, ", "))
	}
	if s.limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *s.limit)
	}
	if s.offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *s.offset)
	}
	return b.String(), nil
}

func (c *Compiler) assembleInsert(s *stmt) (string, error) {
	if len(s.rows) == 0 {
		return "", rqerrors.NewEmptyStructure("INSERT has no value rows")
	}
	cols := make([]string, len(s.columns))
	for i, col := range s.columns {
		cols[i] = c.quote(col)
	}
	rowsSQL := make([]string, len(s.rows))
	for i, row := range s.rows {
		rowsSQL[i] = "(" + strings.Join(row, ", ") + ")"
	}

	verb := "INSERT INTO"
	var suffix string
	if s.conflict != nil {
		switch {
		case c.D.Name() == "mysql" && s.conflict.action == ast.DoNothing:
			verb = "INSERT IGNORE INTO"
		case c.D.Name() == "mysql" && s.conflict.action == ast.DoUpdate:
			suffix = " ON DUPLICATE KEY UPDATE " + strings.Join(s.conflict.updates, ", ")
		default:
			suffix = c.standardConflictSuffix(s.conflict)
		}
	}

	sql := fmt.Sprintf("%s %s (%s) VALUES %s%s", verb, c.quote(s.table), strings.Join(cols, ", "), strings.Join(rowsSQL, ", "), suffix)
	if len(s.returningSQL) > 0 {
		sql += " RETURNING " + strings.Join(s.returningSQL, ", ")
	}
	return sql, nil
}

func (c *Compiler) standardConflictSuffix(conflict *conflictClause) string {
	targets := ""
	if len(conflict.targetCols) > 0 {
		cols := make([]string, len(conflict.targetCols))
		for i, col := range conflict.targetCols {
			cols[i] = c.quote(col)
		}
		targets = " (" + strings.Join(cols, ", ") + ")"
	}
	if conflict.action == ast.DoNothing {
		return fmt.Sprintf(" ON CONFLICT%s DO NOTHING", targets)
	}
	suffix := fmt.Sprintf(" ON CONFLICT%s DO UPDATE SET %s", targets, strings.Join(conflict.updates, ", "))
	if conflict.whereSQL != "" {
		suffix += " WHERE " + conflict.whereSQL
	}
	return suffix
}

func (c *Compiler) assembleUpdate(s *stmt) (string, error) {
	if len(s.assignments) == 0 {
		return "", rqerrors.NewEmptyStructure("UPDATE has no assignments")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", c.quote(s.table), strings.Join(s.assignments, ", "))
	if s.whereSQL != "" {
		fmt.Fprintf(&b, " WHERE %s", s.whereSQL)
	}
	if len(s.returningSQL) > 0 {
		fmt.Fprintf(&b, " RETURNING %s", strings.Join(s.returningSQL, ", "))
	}
	return b.String(), nil
}

func (c *Compiler) assembleDelete(s *stmt) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s", c.quote(s.table))
	if s.whereSQL != "" {
		fmt.Fprintf(&b, " WHERE %s", s.whereSQL)
	}
	if len(s.returningSQL) > 0 {
		fmt.Fprintf(&b, " RETURNING %s", strings.Join(s.returningSQL, ", "))
	}
	return b.String(), nil
}
