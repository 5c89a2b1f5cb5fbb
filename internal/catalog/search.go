package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSearchLimit applies when SearchStations is given a non-positive limit.
const DefaultSearchLimit = 10

var lineIndicators = []string{
	"line",
	"railway",
	"express",
	"main line",
	"coast",
	"branch",
	"metro",
	"overground",
	"elizabeth",
}

// SearchStations returns display names of stations whose name contains query,
// case-insensitively. Exact matches rank first, then prefix matches, then
// the rest; ties are alphabetical.
func (c *Catalog) SearchStations(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	type match struct {
		name string
		rank int
	}
	var matches []match
	for _, name := range c.names {
		lower := strings.ToLower(name)
		switch {
		case lower == q:
			matches = append(matches, match{name, 0})
		case strings.HasPrefix(lower, q):
			matches = append(matches, match{name, 1})
		case strings.Contains(lower, q):
			matches = append(matches, match{name, 2})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].name < matches[j].name
	})

	results := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(results) == limit {
			break
		}
		results = append(results, c.DisplayName(m.name))
	}
	return results
}

// DisplayName returns "Name (Primary Line)" for stations served by more than
// one line and the bare name otherwise.
func (c *Catalog) DisplayName(name string) string {
	lines := c.stationLines[name]
	if len(lines) > 1 {
		return fmt.Sprintf("%s (%s)", name, lines[0])
	}
	return name
}

// ParseStationName strips a trailing line disambiguation suffix, also
// recognising the catalog's own line names.
func (c *Catalog) ParseStationName(display string) string {
	return parseStationName(display, func(s string) bool {
		_, ok := c.linesByName[s]
		return ok
	})
}

// ParseStationName strips a trailing parenthetical only when it names a line,
// so "Woking (South Western Main Line)" becomes "Woking" while
// "Farnborough (Main)" is left alone.
func ParseStationName(display string) string {
	return parseStationName(display, nil)
}

func parseStationName(display string, isLine func(string) bool) string {
	s := strings.TrimSpace(display)
	if !strings.HasSuffix(s, ")") {
		return s
	}
	open := strings.LastIndex(s, "(")
	if open <= 0 {
		return s
	}

	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if hasLineIndicator(inner) || (isLine != nil && isLine(inner)) {
		return strings.TrimSpace(s[:open])
	}
	return s
}

func hasLineIndicator(s string) bool {
	lower := strings.ToLower(s)
	for _, ind := range lineIndicators {
		if containsWord(lower, ind) {
			return true
		}
	}
	return false
}

// containsWord matches needle on word boundaries so "Lineside" does not count
// as a line.
func containsWord(haystack, needle string) bool {
	for i := 0; ; {
		idx := strings.Index(haystack[i:], needle)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(needle)
		if (start == 0 || !isWordByte(haystack[start-1])) && (end == len(haystack) || !isWordByte(haystack[end])) {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
