package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lowercase LIKE pattern matching value anywhere.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
}

// IContains is a case-insensitive substring match on a column expression.
func IContains(column, value string) sq.Sqlizer {
	return sq.Expr("LOWER("+column+") LIKE ? ESCAPE '\\'", containsPattern(value))
}
