package codec

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// DefaultTableName derives a table name from a Go struct name the same
// way the engine's table-naming rules did for CRUD operations:
// snake_case then pluralize ("User" -> "users", "OrderItem" ->
// "order_items").
func DefaultTableName(structName string) string {
	return inflection.Plural(toSnakeCase(structName))
}

// DefaultColumnName derives a column name from a Go struct field name:
// snake_case, no pluralization ("CreatedAt" -> "created_at").
func DefaultColumnName(fieldName string) string {
	return toSnakeCase(fieldName)
}

// toSnakeCase folds a CamelCase or PascalCase identifier into
// lower_snake_case, inserting an underscore before each uppercase
// letter that follows a lowercase letter or digit, or that starts a
// trailing run of lowercase letters after an acronym ("UserID" ->
// "user_id", "HTTPStatus" -> "http_status").
func toSnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
