package compiler

import (
	"fmt"
	"strings"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/rqerrors"
)

// CompileDDL walks a DDLStatement and emits dialect-specific SQL text.
// DDL carries no bound parameters, so unlike Compile it returns only
// the SQL string.
func (c *Compiler) CompileDDL(stmt ast.DDLStatement) (string, error) {
	c.Warnings = nil
	switch n := stmt.(type) {
	case ast.CreateTable:
		return c.compileCreateTable(n)
	case ast.AlterTable:
		return c.compileAlterTable(n)
	case ast.DropTable:
		return c.compileDropTable(n)
	case ast.CreateIndex:
		return c.compileCreateIndex(n)
	case ast.DropIndex:
		return c.compileDropIndex(n)
	default:
		return "", rqerrors.NewUnsupported("DDL", fmt.Sprintf("unrecognized DDL statement %T", stmt))
	}
}

func (c *Compiler) compileColumnDef(col ast.ColumnDef) (string, error) {
	typeName, suppressAutoIncrement := c.D.ColumnDefType(col)
	if typeName == "" {
		return "", rqerrors.NewUnknownColumnType(string(col.Type))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s%s", c.quote(col.Name), typeName, col.TypeParams)
	for _, con := range col.Constraints {
		if con.Kind == ast.ConstraintAutoIncrement && suppressAutoIncrement {
			continue
		}
		clause, err := c.compileColumnConstraint(con)
		if err != nil {
			return "", err
		}
		if clause != "" {
			b.WriteString(" " + clause)
		}
	}
	return b.String(), nil
}

func (c *Compiler) compileColumnConstraint(con ast.ColumnConstraint) (string, error) {
	switch con.Kind {
	case ast.ConstraintPrimaryKey:
		return "PRIMARY KEY", nil
	case ast.ConstraintNotNull:
		return "NOT NULL", nil
	case ast.ConstraintUnique:
		return "UNIQUE", nil
	case ast.ConstraintDefault:
		ctx := &context{paramNames: new([]string)}
		val, err := c.compileExpr(con.Expr, ctx)
		if err != nil {
			return "", err
		}
		return "DEFAULT " + val, nil
	case ast.ConstraintCheck:
		ctx := &context{paramNames: new([]string)}
		val, err := c.compileExpr(con.Expr, ctx)
		if err != nil {
			return "", err
		}
		return "CHECK (" + val + ")", nil
	case ast.ConstraintForeignKey:
		return c.foreignKeyClause(con.ForeignKey), nil
	case ast.ConstraintAutoIncrement:
		if c.D.Name() == "sqlite" {
			return "AUTOINCREMENT", nil
		}
		if c.D.Name() == "mysql" {
			return "AUTO_INCREMENT", nil
		}
		return "", nil
	case ast.ConstraintGenerated:
		ctx := &context{paramNames: new([]string)}
		val, err := c.compileExpr(con.Expr, ctx)
		if err != nil {
			return "", err
		}
		mode := "VIRTUAL"
		if con.Stored {
			mode = "STORED"
		}
		return fmt.Sprintf("GENERATED ALWAYS AS (%s) %s", val, mode), nil
	case ast.ConstraintCollation:
		return "COLLATE " + con.Text, nil
	case ast.ConstraintIdentity:
		return "GENERATED ALWAYS AS IDENTITY", nil
	case ast.ConstraintComment:
		// Rendered as a trailing SQL COMMENT clause only on dialects that
		// embed it inline; MySQL does, PostgreSQL/SQLite use a separate
		// COMMENT ON statement this compiler does not emit.
		if c.D.Name() == "mysql" {
			return "COMMENT " + dialectEscape(con.Text), nil
		}
		c.warn("column comment %q dropped: %s has no inline column comment syntax", con.Text, c.D.Name())
		return "", nil
	default:
		return "", rqerrors.NewUnsupported("DDL", "unrecognized column constraint kind")
	}
}

func dialectEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (c *Compiler) foreignKeyClause(fk ast.ForeignKeyRef) string {
	clause := fmt.Sprintf("REFERENCES %s (%s)", c.quote(fk.Table), c.quote(fk.Column))
	if fk.OnDelete != "" {
		clause += " ON DELETE " + string(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		clause += " ON UPDATE " + string(fk.OnUpdate)
	}
	return clause
}

func (c *Compiler) compileTableConstraint(tc ast.TableConstraint) (string, error) {
	var name string
	if tc.Name != "" {
		name = fmt.Sprintf("CONSTRAINT %s ", c.quote(tc.Name))
	}
	switch tc.Kind {
	case ast.TableConstraintPrimaryKey:
		return name + "PRIMARY KEY (" + c.quoteList(tc.Columns) + ")", nil
	case ast.TableConstraintUnique:
		return name + "UNIQUE (" + c.quoteList(tc.Columns) + ")", nil
	case ast.TableConstraintCheck:
		ctx := &context{paramNames: new([]string)}
		val, err := c.compileExpr(tc.Expr, ctx)
		if err != nil {
			return "", err
		}
		return name + "CHECK (" + val + ")", nil
	case ast.TableConstraintForeignKey:
		return name + "FOREIGN KEY (" + c.quoteList(tc.Columns) + ") " + c.foreignKeyClause(tc.ForeignKey), nil
	default:
		return "", rqerrors.NewUnsupported("DDL", "unrecognized table constraint kind")
	}
}

func (c *Compiler) quoteList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = c.quote(col)
	}
	return strings.Join(quoted, ", ")
}

func (c *Compiler) compileCreateTable(n ast.CreateTable) (string, error) {
	if len(n.Columns) == 0 {
		return "", rqerrors.NewEmptyStructure("CREATE TABLE has no columns")
	}
	parts := make([]string, 0, len(n.Columns)+len(n.Constraints))
	for _, col := range n.Columns {
		rendered, err := c.compileColumnDef(col)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	for _, tc := range n.Constraints {
		rendered, err := c.compileTableConstraint(tc)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	var kw strings.Builder
	kw.WriteString("CREATE ")
	if n.Temporary {
		kw.WriteString("TEMPORARY ")
	}
	kw.WriteString("TABLE ")
	if n.IfNotExists {
		kw.WriteString("IF NOT EXISTS ")
	}
	return fmt.Sprintf("%s%s (%s)", kw.String(), c.quote(n.Table), strings.Join(parts, ", ")), nil
}

// compileAlterTable emits ALTER TABLE, honoring SQLite's restricted
// subset: only ADD COLUMN, RENAME COLUMN, ADD table-level constraint,
// and DROP TABLE constraint are supported. DROP COLUMN, SET/DROP
// DEFAULT, SET/DROP NOT NULL, SET TYPE, and the PostgreSQL-only
// storage/statistics ops all produce a clear Unsupported error naming
// the operation.
func (c *Compiler) compileAlterTable(n ast.AlterTable) (string, error) {
	if len(n.Operations) == 0 {
		return "", rqerrors.NewEmptyStructure("ALTER TABLE has no operations")
	}
	statements := make([]string, 0, len(n.Operations))
	for _, op := range n.Operations {
		sql, err := c.compileAlterOp(n.Table, op)
		if err != nil {
			return "", err
		}
		statements = append(statements, sql)
	}
	return strings.Join(statements, "; "), nil
}

func (c *Compiler) compileAlterOp(table string, op ast.AlterOp) (string, error) {
	prefix := fmt.Sprintf("ALTER TABLE %s", c.quote(table))
	isSQLite := c.D.Name() == "sqlite"

	switch op.Kind {
	case ast.AlterAddColumn:
		col, err := c.compileColumnDef(op.Column)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ADD COLUMN %s", prefix, col), nil

	case ast.AlterDropColumn:
		if isSQLite {
			return "", rqerrors.NewUnsupported("ALTER_DROP_COLUMN", "SQLite does not support DROP COLUMN")
		}
		return fmt.Sprintf("%s DROP COLUMN %s", prefix, c.quote(op.ColumnName)), nil

	case ast.AlterRenameColumn:
		if isSQLite {
			return fmt.Sprintf("%s RENAME COLUMN %s TO %s", prefix, c.quote(op.ColumnName), c.quote(op.NewColumnName)), nil
		}
		return fmt.Sprintf("%s RENAME COLUMN %s TO %s", prefix, c.quote(op.ColumnName), c.quote(op.NewColumnName)), nil

	case ast.AlterAddTableConstraint:
		tc, err := c.compileTableConstraint(op.TableConstraint)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ADD %s", prefix, tc), nil

	case ast.AlterDropConstraint:
		return fmt.Sprintf("%s DROP CONSTRAINT %s", prefix, c.quote(op.ConstraintName)), nil

	case ast.AlterSetDefault:
		if isSQLite {
			return "", rqerrors.NewUnsupported("ALTER_SET_DEFAULT", "SQLite does not support SET DEFAULT")
		}
		ctx := &context{paramNames: new([]string)}
		val, err := c.compileExpr(op.Default, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ALTER COLUMN %s SET DEFAULT %s", prefix, c.quote(op.ColumnName), val), nil

	case ast.AlterDropDefault:
		if isSQLite {
			return "", rqerrors.NewUnsupported("ALTER_DROP_DEFAULT", "SQLite does not support DROP DEFAULT")
		}
		return fmt.Sprintf("%s ALTER COLUMN %s DROP DEFAULT", prefix, c.quote(op.ColumnName)), nil

	case ast.AlterSetNotNull:
		if isSQLite {
			return "", rqerrors.NewUnsupported("ALTER_SET_NOT_NULL", "SQLite does not support SET NOT NULL")
		}
		return fmt.Sprintf("%s ALTER COLUMN %s SET NOT NULL", prefix, c.quote(op.ColumnName)), nil

	case ast.AlterDropNotNull:
		if isSQLite {
			return "", rqerrors.NewUnsupported("ALTER_DROP_NOT_NULL", "SQLite does not support DROP NOT NULL")
		}
		return fmt.Sprintf("%s ALTER COLUMN %s DROP NOT NULL", prefix, c.quote(op.ColumnName)), nil

	case ast.AlterSetType:
		if isSQLite {
			return "", rqerrors.NewUnsupported("ALTER_SET_TYPE", "SQLite does not support SET TYPE")
		}
		typeName := c.D.ColumnTypeName(op.NewType, "")
		return fmt.Sprintf("%s ALTER COLUMN %s TYPE %s", prefix, c.quote(op.ColumnName), typeName), nil

	case ast.AlterSetStatistics:
		if c.D.Name() != "postgresql" {
			return "", rqerrors.NewUnsupported("ALTER_SET_STATISTICS", "SET STATISTICS is PostgreSQL-only")
		}
		return fmt.Sprintf("%s ALTER COLUMN %s SET STATISTICS %d", prefix, c.quote(op.ColumnName), op.Statistics), nil

	case ast.AlterSetStorage:
		if c.D.Name() != "postgresql" {
			return "", rqerrors.NewUnsupported("ALTER_SET_STORAGE", "SET STORAGE is PostgreSQL-only")
		}
		return fmt.Sprintf("%s ALTER COLUMN %s SET STORAGE %s", prefix, c.quote(op.ColumnName), op.Storage), nil

	default:
		return "", rqerrors.NewUnsupported("DDL", "unrecognized ALTER TABLE operation kind")
	}
}

func (c *Compiler) compileDropTable(n ast.DropTable) (string, error) {
	var b strings.Builder
	b.WriteString("DROP TABLE ")
	if n.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(c.quote(n.Table))
	if n.Cascade {
		if c.D.Name() == "sqlite" {
			c.warn("CASCADE on DROP TABLE is not supported by sqlite; dropping only %s", n.Table)
		} else {
			b.WriteString(" CASCADE")
		}
	}
	return b.String(), nil
}

func (c *Compiler) compileCreateIndex(n ast.CreateIndex) (string, error) {
	if len(n.Columns) == 0 && len(n.Expressions) == 0 {
		return "", rqerrors.NewEmptyStructure("CREATE INDEX has no columns or expressions")
	}
	targets := make([]string, 0, len(n.Columns)+len(n.Expressions))
	for _, col := range n.Columns {
		targets = append(targets, c.quote(col))
	}
	ctx := &context{paramNames: new([]string)}
	for _, e := range n.Expressions {
		rendered, err := c.compileExpr(e, ctx)
		if err != nil {
			return "", err
		}
		targets = append(targets, rendered)
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if n.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	if n.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	fmt.Fprintf(&b, "%s ON %s", c.quote(n.Name), c.quote(n.Table))
	if n.Method != "" {
		switch c.D.Name() {
		case "postgresql":
			fmt.Fprintf(&b, " USING %s", n.Method)
		case "mysql":
			c.warn("CREATE INDEX USING %s is not supported by mysql; method ignored", n.Method)
		case "sqlite":
			// silently ignored, per the access method being meaningless here
		}
	}
	fmt.Fprintf(&b, " (%s)", strings.Join(targets, ", "))
	if n.Where != nil {
		cond, err := c.compileExpr(n.Where, ctx)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " WHERE %s", cond)
	}
	return b.String(), nil
}

func (c *Compiler) compileDropIndex(n ast.DropIndex) (string, error) {
	var b strings.Builder
	b.WriteString("DROP INDEX ")
	if n.IfExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(c.quote(n.Name))
	return b.String(), nil
}
