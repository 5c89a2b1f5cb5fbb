package models

// Common constants used across the application
const (
	// UnknownValue is the fallback value when data is unavailable or calculation fails
	UnknownValue = "UNKNOWN"

	// MaxPathLength bounds the number of stations in any route.
	MaxPathLength = 20

	// LegacyPattern is the pattern code given to edges of lines without service pattern data.
	LegacyPattern = "legacy"

	// LegacyPriority is the priority rank of legacy edges.
	LegacyPriority = 3
)
