package catalog

import (
	"encoding/json"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"time"

	"railnet.dev/railnet/internal/models"
)

// SkippedLine records a line file that could not be loaded.
type SkippedLine struct {
	Name   string `json:"name"`
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Report summarises a catalog load.
type Report struct {
	LinesLoaded     int           `json:"linesLoaded"`
	StationsLoaded  int           `json:"stationsLoaded"`
	SkippedLines    []SkippedLine `json:"skippedLines"`
	SkippedStations int           `json:"skippedStations"`
	SkippedPatterns int           `json:"skippedPatterns"`
	MissingKeys     []string      `json:"missingKeys,omitempty"`
	Fingerprint     string        `json:"fingerprint"`
	LoadedAt        time.Time     `json:"loadedAt"`
	Duration        time.Duration `json:"duration"`
}

// Catalog is an immutable snapshot of the station and line dataset. All
// lookups are safe for concurrent use.
type Catalog struct {
	lines        []*models.RailwayLine
	linesByName  map[string]*models.RailwayLine
	stations     map[string]models.Station
	folded       map[string]string
	stationLines map[string][]string
	names        []string
	report       Report
}

// New indexes lines, in order, into a Catalog. A station served by several
// lines keeps the first record seen; later records only add line membership.
func New(lines []*models.RailwayLine) *Catalog {
	c := &Catalog{
		linesByName:  make(map[string]*models.RailwayLine, len(lines)),
		stations:     make(map[string]models.Station),
		folded:       make(map[string]string),
		stationLines: make(map[string][]string),
	}

	for _, line := range lines {
		if line == nil || line.Name == "" {
			continue
		}
		if _, dup := c.linesByName[line.Name]; dup {
			continue
		}
		c.lines = append(c.lines, line)
		c.linesByName[line.Name] = line

		for _, s := range line.Stations {
			if _, ok := c.stations[s.Name]; !ok {
				c.stations[s.Name] = s
				c.folded[strings.ToLower(s.Name)] = s.Name
				c.names = append(c.names, s.Name)
			}
			if !containsString(c.stationLines[s.Name], line.Name) {
				c.stationLines[s.Name] = append(c.stationLines[s.Name], line.Name)
			}
		}
	}

	sort.Strings(c.names)
	c.report.LinesLoaded = len(c.lines)
	c.report.StationsLoaded = len(c.stations)
	c.report.Fingerprint = fingerprint(c.lines)
	return c
}

// fingerprint digests the line contents. Equal datasets give equal
// fingerprints across processes.
func fingerprint(lines []*models.RailwayLine) string {
	h := fnv.New64a()
	if err := json.NewEncoder(h).Encode(lines); err != nil {
		return ""
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// Fingerprint identifies the dataset content of this snapshot.
func (c *Catalog) Fingerprint() string {
	return c.report.Fingerprint
}

// Report returns the load summary.
func (c *Catalog) Report() Report {
	r := c.report
	r.SkippedLines = append([]SkippedLine(nil), c.report.SkippedLines...)
	r.MissingKeys = append([]string(nil), c.report.MissingKeys...)
	return r
}

// Lines returns the lines in index order.
func (c *Catalog) Lines() []*models.RailwayLine {
	return append([]*models.RailwayLine(nil), c.lines...)
}

// Line looks up a line by exact name.
func (c *Catalog) Line(name string) (*models.RailwayLine, bool) {
	l, ok := c.linesByName[name]
	return l, ok
}

// Stations returns every canonical station sorted by name.
func (c *Catalog) Stations() []models.Station {
	out := make([]models.Station, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, c.stations[n])
	}
	return out
}

func (c *Catalog) StationCount() int { return len(c.stations) }

func (c *Catalog) LineCount() int { return len(c.lines) }

// HasStation reports whether name is a canonical station name.
func (c *Catalog) HasStation(name string) bool {
	_, ok := c.stations[name]
	return ok
}

// StationByName resolves a display or canonical name to its station record.
// Names differing only in case resolve to the same station.
func (c *Catalog) StationByName(name string) (models.Station, bool) {
	canonical, ok := c.Resolve(name)
	if !ok {
		return models.Station{}, false
	}
	return c.stations[canonical], true
}

// Resolve maps a display name to the canonical station name.
func (c *Catalog) Resolve(name string) (string, bool) {
	parsed := c.ParseStationName(name)
	if parsed == "" {
		return "", false
	}
	if _, ok := c.stations[parsed]; ok {
		return parsed, true
	}
	if canonical, ok := c.folded[strings.ToLower(parsed)]; ok {
		return canonical, true
	}
	return "", false
}

// LinesForStation returns the names of lines serving the station in index order.
func (c *Catalog) LinesForStation(name string) []string {
	canonical, ok := c.Resolve(name)
	if !ok {
		return []string{}
	}
	return append([]string{}, c.stationLines[canonical]...)
}

// CommonLines returns the lines serving both stations, in index order.
func (c *Catalog) CommonLines(a, b string) []*models.RailwayLine {
	var out []*models.RailwayLine
	bLines := c.stationLines[b]
	for _, name := range c.stationLines[a] {
		if containsString(bLines, name) {
			out = append(out, c.linesByName[name])
		}
	}
	return out
}

// MissingStations returns the names in want that are absent from the catalog.
func (c *Catalog) MissingStations(want []string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := c.stations[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
