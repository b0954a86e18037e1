package domain

import "strings"

// FindLink returns the first whitespace-separated token of text that contains
// pattern. Commands (text starting with "/") never match.
func FindLink(text, pattern string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || pattern == "" || strings.HasPrefix(text, "/") {
		return "", false
	}
	if !strings.Contains(text, pattern) {
		return "", false
	}
	for _, field := range strings.Fields(text) {
		if strings.Contains(field, pattern) {
			return field, true
		}
	}
	return "", false
}
