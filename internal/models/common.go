package models

import "strings"

// equalFold trims before comparing; stored status values occasionally carry
// whitespace from hand-edited documents.
func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
