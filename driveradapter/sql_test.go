package driveradapter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniql-engine/relq/driveradapter"
)

func TestOpenRejectsUnknownKind(t *testing.T) {
	_, err := driveradapter.Open(context.Background(), driveradapter.Kind("oracle"), "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestSQLiteConnectionExecutesAndDescribesTables(t *testing.T) {
	conn, err := driveradapter.Open(context.Background(), driveradapter.KindSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	_, err = conn.ExecuteSQL(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL)", nil)
	require.NoError(t, err)

	_, err = conn.ExecuteSQL(ctx, "INSERT INTO users (id, email) VALUES (?, ?)", []any{int64(1), "ada@example.com"})
	require.NoError(t, err)

	rows, err := conn.ExecuteSQL(ctx, "SELECT id, email FROM users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ada@example.com", rows[0]["email"])

	tables, err := conn.ListTables(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, tables, "users")

	cols, err := conn.DescribeTable(ctx, "users", "")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.True(t, cols[0].PrimaryKey)
	assert.False(t, cols[1].Nullable)

	schemas, err := conn.ListSchemas(ctx)
	require.NoError(t, err)
	assert.Empty(t, schemas)
}
