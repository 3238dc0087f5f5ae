package sqlite_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect"
	"github.com/omniql-engine/relq/dialect/sqlite"
)

func TestQuoteIdentifierDoublesEmbeddedBacktick(t *testing.T) {
	d := sqlite.New("")
	assert.Equal(t, "`a``b`", d.QuoteIdentifier("a`b"))
}

func TestReturningGatedByVersion(t *testing.T) {
	old := sqlite.New("3.30.0")
	assert.False(t, old.Supports(dialect.CapReturning))

	recent := sqlite.New("3.40.0")
	assert.True(t, recent.Supports(dialect.CapReturning))

	assert.True(t, sqlite.New("").Supports(dialect.CapReturning), "empty version assumes latest")
}

func TestEncodeLiteralEscapesQuotes(t *testing.T) {
	d := sqlite.New("")
	sql, err := d.EncodeLiteral("O'Brien")
	assert.NoError(t, err)
	assert.Equal(t, "'O''Brien'", sql)

	sql, err = d.EncodeLiteral(true)
	assert.NoError(t, err)
	assert.Equal(t, "1", sql)
}

func TestILikeHasNoNativeSupport(t *testing.T) {
	assert.False(t, sqlite.New("").Supports(dialect.CapILike))
}

func TestEncodeLiteralDateAndDateTime(t *testing.T) {
	d := sqlite.New("")
	when := time.Date(2024, time.March, 5, 13, 45, 30, 0, time.UTC)

	sql, err := d.EncodeLiteral(ast.Date(when))
	assert.NoError(t, err)
	assert.Equal(t, "'2024-03-05'", sql)

	sql, err = d.EncodeLiteral(when)
	assert.NoError(t, err)
	assert.Equal(t, "'2024-03-05 13:45:30'", sql)
}

func TestEncodeLiteralUUIDAndJSONAndBinary(t *testing.T) {
	d := sqlite.New("")
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")

	sql, err := d.EncodeLiteral(id)
	assert.NoError(t, err)
	assert.Equal(t, "'123e4567-e89b-12d3-a456-426614174000'", sql)

	sql, err = d.EncodeLiteral(map[string]any{"a": 1})
	assert.NoError(t, err)
	assert.Equal(t, `'{"a":1}'`, sql)

	sql, err = d.EncodeLiteral([]byte{0xDE, 0xAD})
	assert.NoError(t, err)
	assert.Equal(t, "X'dead'", sql)
}
