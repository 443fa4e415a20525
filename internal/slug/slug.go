package slug

import (
	"regexp"
	"strings"
)

const separator = "-vs-"

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Normalize converts a free-text product name into its canonical slug form:
// lowercase, trimmed, restricted to [a-z0-9-], with whitespace runs collapsed
// to single hyphens.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DeriveKey computes the canonical comparison slug for two product names.
// The normalized forms are sorted before joining, so the key is symmetric:
// DeriveKey(a, b) == DeriveKey(b, a).
func DeriveKey(nameA, nameB string) string {
	a := Normalize(nameA)
	b := Normalize(nameB)
	if b < a {
		a, b = b, a
	}
	return a + separator + b
}

// SplitKey is the best-effort inverse of DeriveKey. It splits on the first
// "-vs-" occurrence, so product slugs that themselves contain "-vs-" may not
// round-trip; callers use this for display only, never for identity.
func SplitKey(key string) (string, string, bool) {
	a, b, found := strings.Cut(key, separator)
	if !found || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}
