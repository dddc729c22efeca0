package app

import (
	"regexp"
	"strings"
)

// Tracker queries are short upserts and ordered card reads; half a kilobyte
// is enough to keep the whole statement readable in a span attribute.
const tracedQueryLimit = 512

var sqlWhitespaceRe = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses a SQL statement onto one line and caps its
// length before otelsql attaches it to a span.
func formatDBQueryForTrace(query string) string {
	flat := sqlWhitespaceRe.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(flat) > tracedQueryLimit {
		return flat[:tracedQueryLimit] + "..."
	}
	return flat
}
