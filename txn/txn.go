// Package txn scopes a driver.Connection inside a transaction or a
// nested savepoint: begin on entry, commit on normal return, rollback
// on error, matching the client package's scoped-acquisition pattern
// for its own transaction helper.
package txn

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/omniql-engine/relq/driver"
	"github.com/omniql-engine/relq/rqerrors"
)

// Handle is a transaction or savepoint scope on a single connection.
// It implements driver.Connection so exec package functions can be
// called directly against it in place of the bare connection.
type Handle struct {
	conn   driver.Connection
	active int32 // 1 while the scope can still be completed, 0 once cleared
	depth  int   // savepoint nesting depth; 0 at the top-level transaction
}

func (h *Handle) ExecuteSQL(ctx context.Context, sql string, params []any) (driver.RawRows, error) {
	return h.conn.ExecuteSQL(ctx, sql, params)
}

func (h *Handle) Close() error { return h.conn.Close() }

func (h *Handle) ListTables(ctx context.Context, schema string) ([]string, error) {
	return h.conn.ListTables(ctx, schema)
}

func (h *Handle) DescribeTable(ctx context.Context, table, schema string) ([]driver.ColumnInfo, error) {
	return h.conn.DescribeTable(ctx, table, schema)
}

func (h *Handle) ListSchemas(ctx context.Context) ([]string, error) {
	return h.conn.ListSchemas(ctx)
}

// markDone clears the active flag on its first call, reporting
// whether this call was the one that cleared it. Later calls are
// no-ops, making Commit/Rollback idempotent across a scope.
func (h *Handle) markDone() bool {
	return atomic.CompareAndSwapInt32(&h.active, 1, 0)
}

func begin(ctx context.Context, conn driver.Connection, isolation string) (*Handle, error) {
	beginSQL := "BEGIN"
	if isolation != "" {
		beginSQL = fmt.Sprintf("BEGIN ISOLATION LEVEL %s", isolation)
	}
	if _, err := conn.ExecuteSQL(ctx, beginSQL, nil); err != nil {
		return nil, &rqerrors.TransactionError{Op: "BEGIN", Cause: err}
	}
	return &Handle{conn: conn, active: 1}, nil
}

func (h *Handle) commit(ctx context.Context) error {
	if !h.markDone() {
		return nil
	}
	if _, err := h.conn.ExecuteSQL(ctx, "COMMIT", nil); err != nil {
		return &rqerrors.TransactionError{Op: "COMMIT", Cause: err}
	}
	return nil
}

func (h *Handle) rollback(ctx context.Context) error {
	if !h.markDone() {
		return nil
	}
	if _, err := h.conn.ExecuteSQL(ctx, "ROLLBACK", nil); err != nil {
		return &rqerrors.TransactionError{Op: "ROLLBACK", Cause: err}
	}
	return nil
}

// Transaction acquires a transaction scope on conn with an explicit
// BEGIN (optionally setting isolation, when non-empty), runs body with
// a handle compatible with the connection's execute surface, and
// commits on normal return. Any error from body triggers a rollback
// before the error is re-raised; a panic inside body also rolls back
// before propagating.
func Transaction(ctx context.Context, conn driver.Connection, isolation string, body func(ctx context.Context, tx *Handle) error) (err error) {
	tx, err := begin(ctx, conn, isolation)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.rollback(ctx)
			panic(p)
		}
	}()
	if bodyErr := body(ctx, tx); bodyErr != nil {
		if rbErr := tx.rollback(ctx); rbErr != nil {
			return rbErr
		}
		return bodyErr
	}
	return tx.commit(ctx)
}

// Savepoint opens a nested rollback point named name inside tx, runs
// body with its own handle, and releases the savepoint on normal
// return. Any error from body rolls back to the savepoint (leaving
// writes made before it intact) before the error is re-raised.
// Savepoints nest arbitrarily: body may itself call Savepoint again on
// the handle it receives.
func Savepoint(ctx context.Context, tx *Handle, name string, body func(ctx context.Context, sp *Handle) error) (err error) {
	if _, err := tx.conn.ExecuteSQL(ctx, "SAVEPOINT "+name, nil); err != nil {
		return &rqerrors.TransactionError{Op: "SAVEPOINT", Cause: err}
	}
	sp := &Handle{conn: tx.conn, active: 1, depth: tx.depth + 1}
	defer func() {
		if p := recover(); p != nil {
			sp.markDone()
			_, _ = tx.conn.ExecuteSQL(ctx, "ROLLBACK TO SAVEPOINT "+name, nil)
			panic(p)
		}
	}()
	if bodyErr := body(ctx, sp); bodyErr != nil {
		sp.markDone()
		if _, rbErr := tx.conn.ExecuteSQL(ctx, "ROLLBACK TO SAVEPOINT "+name, nil); rbErr != nil {
			return &rqerrors.TransactionError{Op: "ROLLBACK TO SAVEPOINT", Cause: rbErr}
		}
		return bodyErr
	}
	sp.markDone()
	if _, err := tx.conn.ExecuteSQL(ctx, "RELEASE SAVEPOINT "+name, nil); err != nil {
		return &rqerrors.TransactionError{Op: "RELEASE SAVEPOINT", Cause: err}
	}
	return nil
}
