package utils

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// Detect potentially dangerous characters - more focused on injection patterns
	dangerousPattern = regexp.MustCompile(`[<>]|--|\/\*|\*\/|;.*--`)

	// Detect HTML/script tags
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	// Station names are letters, digits, spaces and a little punctuation, e.g. "King's Lynn", "St. Pancras (Midland Main Line)".
	stationNamePattern = regexp.MustCompile(`^[\p{L}\p{N} '&().,/-]+$`)
)

// ValidateQuery validates search query strings
func ValidateQuery(query string) error {
	// Empty queries are allowed
	if query == "" {
		return nil
	}

	if len(query) > 200 {
		return errors.New("query too long (max 200 characters)")
	}

	if dangerousPattern.MatchString(query) {
		return errors.New("query contains invalid characters")
	}

	return nil
}

// ValidateStationName validates a (possibly disambiguated) station name.
func ValidateStationName(name string) error {
	if name == "" {
		return errors.New("station name cannot be empty")
	}

	if len(name) > 120 {
		return errors.New("station name too long (max 120 characters)")
	}

	if strings.Contains(name, "--") || !stationNamePattern.MatchString(name) {
		return errors.New("station name contains invalid characters")
	}

	return nil
}

// ValidateLimit validates result limits.
func ValidateLimit(limit, max int) error {
	if limit < 1 {
		return errors.New("limit must be positive")
	}
	if limit > max {
		return errors.New("limit too large")
	}
	return nil
}

// ValidateMaxChanges validates the line change budget of a route query.
func ValidateMaxChanges(changes int) error {
	if changes < 0 {
		return errors.New("maxChanges must be non-negative")
	}
	if changes > 6 {
		return errors.New("maxChanges too large (max 6)")
	}
	return nil
}

// SanitizeInput removes HTML tags and other potentially dangerous content
func SanitizeInput(input string) string {
	sanitized := htmlTagPattern.ReplaceAllString(input, "")
	return strings.TrimSpace(sanitized)
}

// ValidateAndSanitizeQuery validates and sanitizes a search query
func ValidateAndSanitizeQuery(query string) (string, error) {
	if err := ValidateQuery(query); err != nil {
		return "", err
	}

	return SanitizeInput(query), nil
}
