package dbx

import (
	"strconv"
	"strings"
)

// Placeholders renders n positional Postgres parameters starting at $start,
// e.g. Placeholders(2, 3) == "$2, $3, $4". It is used to build IN (...) lists.
func Placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}

// StringArgs converts ids to a []any suitable for variadic query args,
// prefixed by head.
func StringArgs(head []any, ids []string) []any {
	args := make([]any, 0, len(head)+len(ids))
	args = append(args, head...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
