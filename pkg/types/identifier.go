package types

import "unicode"

// IsIdentifier returns true if the string is a valid identifier
// (starts with a letter or underscore, contains only letters, digits,
// underscores and hyphens). Used for user and conversation identifiers.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
