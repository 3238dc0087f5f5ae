package driver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omniql-engine/relq/driver"
)

func TestStatementCacheHitAndMiss(t *testing.T) {
	c := driver.NewStatementCache(2, 1, 2)

	_, ok := c.Get("SELECT 1")
	assert.False(t, ok)

	c.Put("SELECT 1", "handle-1")
	got, ok := c.Get("SELECT 1")
	assert.True(t, ok)
	assert.Equal(t, "handle-1", got)
}

func TestStatementCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := driver.NewStatementCache(2, 1, 2)

	c.Put("A", "a")
	c.Put("B", "b")
	// touch A so B becomes the least recently used entry
	_, _ = c.Get("A")
	c.Put("C", "c")

	_, ok := c.Get("B")
	assert.False(t, ok, "B should have been evicted")

	_, ok = c.Get("A")
	assert.True(t, ok)
	_, ok = c.Get("C")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}
