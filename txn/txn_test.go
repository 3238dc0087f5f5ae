package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniql-engine/relq/driver"
	"github.com/omniql-engine/relq/rqerrors"
	"github.com/omniql-engine/relq/txn"
)

// recordingConn logs every SQL statement it is asked to execute, and
// can be made to fail on a chosen statement.
type recordingConn struct {
	statements []string
	failOn     string
}

func (c *recordingConn) ExecuteSQL(ctx context.Context, sql string, params []any) (driver.RawRows, error) {
	c.statements = append(c.statements, sql)
	if c.failOn != "" && sql == c.failOn {
		return nil, errors.New("driver rejected statement")
	}
	return driver.RawRows{}, nil
}

func (c *recordingConn) Close() error { return nil }
func (c *recordingConn) ListTables(ctx context.Context, schema string) ([]string, error) {
	return nil, nil
}
func (c *recordingConn) DescribeTable(ctx context.Context, table, schema string) ([]driver.ColumnInfo, error) {
	return nil, nil
}
func (c *recordingConn) ListSchemas(ctx context.Context) ([]string, error) { return nil, nil }

func TestTransactionCommitsOnNormalReturn(t *testing.T) {
	conn := &recordingConn{}
	err := txn.Transaction(context.Background(), conn, "", func(ctx context.Context, tx *txn.Handle) error {
		_, err := tx.ExecuteSQL(ctx, "INSERT INTO users (email) VALUES ('a@example.com')", nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"BEGIN", "INSERT INTO users (email) VALUES ('a@example.com')", "COMMIT"}, conn.statements)
}

func TestTransactionRollsBackOnBodyError(t *testing.T) {
	conn := &recordingConn{}
	bodyErr := errors.New("business rule violated")
	err := txn.Transaction(context.Background(), conn, "", func(ctx context.Context, tx *txn.Handle) error {
		_, _ = tx.ExecuteSQL(ctx, "INSERT INTO users (email) VALUES ('a@example.com')", nil)
		return bodyErr
	})
	require.ErrorIs(t, err, bodyErr)
	assert.Equal(t, []string{"BEGIN", "INSERT INTO users (email) VALUES ('a@example.com')", "ROLLBACK"}, conn.statements)
}

func TestTransactionSetsIsolationLevel(t *testing.T) {
	conn := &recordingConn{}
	err := txn.Transaction(context.Background(), conn, "SERIALIZABLE", func(ctx context.Context, tx *txn.Handle) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "BEGIN ISOLATION LEVEL SERIALIZABLE", conn.statements[0])
}

func TestTransactionWrapsBeginFailure(t *testing.T) {
	conn := &recordingConn{failOn: "BEGIN"}
	err := txn.Transaction(context.Background(), conn, "", func(ctx context.Context, tx *txn.Handle) error {
		t.Fatal("body must not run when BEGIN fails")
		return nil
	})
	require.Error(t, err)
	var txErr *rqerrors.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "BEGIN", txErr.Op)
}

func TestSavepointReleasesOnSuccessAndRollsBackToOnFailure(t *testing.T) {
	conn := &recordingConn{}
	spErr := errors.New("nested failure")

	err := txn.Transaction(context.Background(), conn, "", func(ctx context.Context, tx *txn.Handle) error {
		_, _ = tx.ExecuteSQL(ctx, "INSERT INTO a VALUES (1)", nil)

		if err := txn.Savepoint(ctx, tx, "sp1", func(ctx context.Context, sp *txn.Handle) error {
			_, _ = sp.ExecuteSQL(ctx, "INSERT INTO b VALUES (1)", nil)
			return nil
		}); err != nil {
			return err
		}

		return txn.Savepoint(ctx, tx, "sp2", func(ctx context.Context, sp *txn.Handle) error {
			_, _ = sp.ExecuteSQL(ctx, "INSERT INTO c VALUES (1)", nil)
			return spErr
		})
	})

	require.ErrorIs(t, err, spErr)
	assert.Equal(t, []string{
		"BEGIN",
		"INSERT INTO a VALUES (1)",
		"SAVEPOINT sp1",
		"INSERT INTO b VALUES (1)",
		"RELEASE SAVEPOINT sp1",
		"SAVEPOINT sp2",
		"INSERT INTO c VALUES (1)",
		"ROLLBACK TO SAVEPOINT sp2",
		"ROLLBACK",
	}, conn.statements)
}

func TestCommitRollbackAreIdempotentAcrossScope(t *testing.T) {
	conn := &recordingConn{}
	calls := 0
	err := txn.Transaction(context.Background(), conn, "", func(ctx context.Context, tx *txn.Handle) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	// Exactly one COMMIT is issued even though markDone guards the path.
	commitCount := 0
	for _, s := range conn.statements {
		if s == "COMMIT" {
			commitCount++
		}
	}
	assert.Equal(t, 1, commitCount)
}
