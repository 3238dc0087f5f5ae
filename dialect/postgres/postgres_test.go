package postgres_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/omniql-engine/relq/ast"
	"github.com/omniql-engine/relq/dialect/postgres"
)

func TestQuoteIdentifierDoublesEmbeddedQuote(t *testing.T) {
	d := postgres.New()
	assert.Equal(t, `"a""b"`, d.QuoteIdentifier(`a"b`))
}

func TestPlaceholderIsOneIndexedDollar(t *testing.T) {
	d := postgres.New()
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "$3", d.Placeholder(3))
}

func TestEncodeLiteralBooleanUsesWords(t *testing.T) {
	d := postgres.New()
	sql, err := d.EncodeLiteral(false)
	assert.NoError(t, err)
	assert.Equal(t, "FALSE", sql)
}

func TestRewriteILikeIsNoop(t *testing.T) {
	d := postgres.New()
	_, ok := d.RewriteILike(false, "a", "b")
	assert.False(t, ok)
}

func TestEncodeLiteralDateUUIDAndBinary(t *testing.T) {
	d := postgres.New()
	when := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	sql, err := d.EncodeLiteral(ast.Date(when))
	assert.NoError(t, err)
	assert.Equal(t, "'2024-03-05'", sql)

	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	sql, err = d.EncodeLiteral(id)
	assert.NoError(t, err)
	assert.Equal(t, "'123e4567-e89b-12d3-a456-426614174000'", sql)

	sql, err = d.EncodeLiteral([]byte{0xDE, 0xAD})
	assert.NoError(t, err)
	assert.Equal(t, `'\xdead'`, sql)
}
