package types

import (
	"strings"

	// Packages
	language "golang.org/x/text/language"
	display "golang.org/x/text/language/display"
)

// NormaliseLanguage canonicalises a language tag such as "en", "HI" or
// "hi-in" to its BCP 47 form. An empty tag is returned as-is.
func NormaliseLanguage(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", nil
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// LanguageName returns the English display name for a language tag, or
// the tag itself when it cannot be parsed.
func LanguageName(tag string) string {
	parsed, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(parsed); name != "" {
		return name
	}
	return tag
}
