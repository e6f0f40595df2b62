package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderClause(t *testing.T) {
	cols := map[string]string{"createdAt": "created_at", "title": "title"}

	assert.Equal(t, `"title" ASC`, orderClause(cols, "title", false))
	assert.Equal(t, `"created_at" DESC`, orderClause(cols, "createdAt", true))
	assert.Equal(t, `"created_at" DESC`, orderClause(cols, "", false), "default is newest first")
	assert.Equal(t, `"created_at" ASC`, orderClause(cols, "password; DROP TABLE users", false), "unknown keys never reach SQL")
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%printer%", likePattern("  printer "))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}
