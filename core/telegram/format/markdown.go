package format

import (
	"regexp"
	"strings"
)

var mdV1Re = regexp.MustCompile("([_*\\[`])")

// EscapeV1 escapes text for legacy Markdown, the parse mode used by bot replies.
func EscapeV1(text string) string {
	return mdV1Re.ReplaceAllString(text, `\$1`)
}

// InlineCode wraps text in a legacy Markdown code span. Backticks inside
// cannot be escaped there, so they are replaced with apostrophes.
func InlineCode(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "'") + "`"
}

// ValueOr returns *s, or placeholder when s is nil or blank.
func ValueOr(s *string, placeholder string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return placeholder
	}
	return *s
}
