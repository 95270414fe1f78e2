package element

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName maps a display name to its identity key: NFC composed,
// surrounding whitespace trimmed, and Unicode case folded. Two names are the
// same element iff their normalized forms are equal.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(norm.NFC.String(name))
	if trimmed == "" {
		return ""
	}
	// Casers are stateful; build one per call.
	return cases.Fold().String(trimmed)
}

// SameName reports whether a and b normalize to the same identity.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}
