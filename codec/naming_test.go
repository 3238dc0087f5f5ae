package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omniql-engine/relq/codec"
)

func TestDefaultTableNamePluralizes(t *testing.T) {
	assert.Equal(t, "users", codec.DefaultTableName("User"))
	assert.Equal(t, "categories", codec.DefaultTableName("Category"))
	assert.Equal(t, "order_items", codec.DefaultTableName("OrderItem"))
}

func TestDefaultColumnNameLowercases(t *testing.T) {
	assert.Equal(t, "email", codec.DefaultColumnName("Email"))
}

func TestDefaultColumnNameSnakeCasesCompoundNames(t *testing.T) {
	assert.Equal(t, "created_at", codec.DefaultColumnName("CreatedAt"))
	assert.Equal(t, "user_id", codec.DefaultColumnName("UserID"))
	assert.Equal(t, "http_status", codec.DefaultColumnName("HTTPStatus"))
}
