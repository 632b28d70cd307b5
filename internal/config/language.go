// Package config provides configuration management for the application.
package config

import (
	"strings"

	"golang.org/x/text/language"
)

// LanguageConfig provides language-related configuration utilities
type LanguageConfig struct {
	tag language.Tag
}

// ParseLanguage parses and validates an ISO language tag.
// If the tag is empty, it defaults to English.
// Returns the validated language tag or defaults to English if invalid.
func ParseLanguage(langTag string) (*LanguageConfig, error) {
	var tag language.Tag
	var err error

	if langTag == "" {
		// Default to English if no language specified
		tag = language.English
	} else {
		// Parse the provided language tag
		tag, err = language.Parse(langTag)
		if err != nil {
			// Try to match with common language codes
			tag, err = language.Parse(strings.ToLower(langTag))
			if err != nil {
				// Default to English if parsing fails
				tag = language.English
			}
		}
	}

	return &LanguageConfig{tag: tag}, nil
}

// Tag returns the underlying language tag
func (lc *LanguageConfig) Tag() language.Tag {
	return lc.tag
}

// String returns the language tag as a string (e.g., "en", "el")
func (lc *LanguageConfig) String() string {
	return lc.tag.String()
}

// DisplayName returns the base language code in English form
// (e.g., "en", "el"). Used when attributing matched sentences to
// their original publication language.
func (lc *LanguageConfig) DisplayName() string {
	base, _ := lc.tag.Base()
	return base.String()
}

// NormalizeLanguage converts a raw language hint from an external sentence
// database (locale strings such as "en_US.UTF-8" or bare codes such as "el")
// into a canonical BCP 47 tag. Unparseable hints normalise to English.
func NormalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return language.English.String()
	}
	// Strip locale encoding suffix and convert underscore separators
	raw = strings.Split(raw, ".")[0]
	raw = strings.Replace(raw, "_", "-", 1)

	lc, _ := ParseLanguage(raw)
	return lc.String()
}
