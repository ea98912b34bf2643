package consumer

import "strings"

// SanitizeJobID replaces every character of id outside [A-Za-z0-9_] with
// "_" (including every "- . space / \") so the result is safe to embed in
// a table name. It is
// idempotent: running it twice yields the same string, since none of its
// own output characters (letters, digits, underscore) are themselves
// replaced.
func SanitizeJobID(id string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, id)
}
