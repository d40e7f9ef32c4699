package helpers

import (
	"strings"
)

// AbsoluteURL prefixes origin to link unless it is already absolute, then drops the query string.
func AbsoluteURL(origin, link string) string {
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "http") {
		link = strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(link, "/")
	}
	return StripQuery(link)
}

// StripQuery removes everything from the first '?' on.
func StripQuery(link string) string {
	if i := strings.IndexByte(link, '?'); i >= 0 {
		return link[:i]
	}
	return link
}

// CollapseSpace trims s and replaces every whitespace run with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
