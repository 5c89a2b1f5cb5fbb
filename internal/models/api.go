package models

// StationEntry is the API view of a station.
type StationEntry struct {
	Name             string   `json:"name"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Zone             string   `json:"zone,omitempty"`
	Interchange      []string `json:"interchange"`
	Lines            []string `json:"lines"`
	MajorInterchange bool     `json:"majorInterchange"`
}

// NewStationEntry builds the API view from a catalog station and its serving lines.
func NewStationEntry(s Station, lines []string) StationEntry {
	interchange := s.Interchange
	if interchange == nil {
		interchange = []string{}
	}
	if lines == nil {
		lines = []string{}
	}
	return StationEntry{
		Name:             s.Name,
		Lat:              s.Coordinates.Lat,
		Lng:              s.Coordinates.Lng,
		Zone:             s.Zone,
		Interchange:      interchange,
		Lines:            lines,
		MajorInterchange: s.IsMajorInterchange(),
	}
}

// RouteEntry is the API view of a computed route.
type RouteEntry struct {
	Stations  []string    `json:"stations"`
	Cost      float64     `json:"cost"`
	Source    RouteSource `json:"source"`
	Changes   []string    `json:"changes"`
	Operators []string    `json:"operators"`
	Polyline  string      `json:"polyline"`
	Heading   string      `json:"heading"`
}

// SegmentIssue describes one consecutive pair of a route that failed validation.
type SegmentIssue struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	DistanceKM float64 `json:"distanceKm"`
	Reason     string  `json:"reason"`
}

// ValidationResult is the outcome of checking a route's geographic plausibility.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Source RouteSource    `json:"source"`
	Issues []SegmentIssue `json:"issues"`
}

// CacheStats are the counters reported by the result cache.
type CacheStats struct {
	L1Hits    int64   `json:"l1Hits"`
	L2Hits    int64   `json:"l2Hits"`
	DiskHits  int64   `json:"diskHits"`
	Misses    int64   `json:"misses"`
	Puts      int64   `json:"puts"`
	Evictions int64   `json:"evictions"`
	DiskBytes int64   `json:"diskBytes"`
	HitRate   float64 `json:"hitRate"`
}
