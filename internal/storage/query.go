package storage

import (
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var errNoRows = gorm.ErrRecordNotFound

type groupCount struct {
	Key   string
	Count int64
}

// orderClause builds an ORDER BY from a whitelisted API sort key. Unknown keys fall back to created_at.
func orderClause(columns map[string]string, sortBy string, desc bool) string {
	column, ok := columns[sortBy]
	if !ok {
		column = "created_at"
		if sortBy == "" {
			desc = true
		}
	}
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return pq.QuoteIdentifier(column) + dir
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps a user search term for a contains-match, escaping LIKE wildcards.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
