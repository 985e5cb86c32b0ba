package models

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	titleCharset   = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// ValidateTitle rejects titles containing anything outside letters, digits
// and spaces. Slugs derived from valid titles are collision-free with respect
// to normalization.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if !titleCharset.MatchString(title) {
		return fmt.Errorf("title contains special characters")
	}
	return nil
}

// Slugify derives the canonical slug: lowercased, trimmed, whitespace runs
// collapsed to a single dash.
func Slugify(title string) string {
	return whitespaceRuns.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
}
