package database

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE/ILIKE pattern metacharacters in a user-supplied
// search term so the term matches literally. PostgreSQL's default escape
// character is the backslash, so no ESCAPE clause is needed.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
