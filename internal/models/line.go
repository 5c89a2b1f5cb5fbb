package models

// RailwayLine is a physical line with its stations in geographic order.
type RailwayLine struct {
	Name         string             `json:"name"`
	File         string             `json:"file"`
	Operator     string             `json:"operator"`
	Terminus     []string           `json:"terminusStations"`
	Major        []string           `json:"majorStations"`
	Stations     []Station          `json:"stations"`
	Patterns     *ServicePatternSet `json:"servicePatterns,omitempty"`
	JourneyTimes map[string]float64 `json:"journeyTimes,omitempty"`
}

// IndexOf returns the position of the named station on the line, or -1.
func (l *RailwayLine) IndexOf(name string) int {
	for i, s := range l.Stations {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the line calls at the named station.
func (l *RailwayLine) Has(name string) bool {
	return l.IndexOf(name) >= 0
}

// StationNames returns the station names in line order.
func (l *RailwayLine) StationNames() []string {
	names := make([]string, len(l.Stations))
	for i, s := range l.Stations {
		names[i] = s.Name
	}
	return names
}

// HasPatterns reports whether the line carries service pattern data.
func (l *RailwayLine) HasPatterns() bool {
	return l.Patterns != nil && len(l.Patterns.Patterns) > 0
}

// Slice returns the stations between from and to inclusive, in travel order.
// Travel can run against the physical order of the line.
func (l *RailwayLine) Slice(from, to string) []string {
	i, j := l.IndexOf(from), l.IndexOf(to)
	if i < 0 || j < 0 {
		return nil
	}

	var out []string
	if i <= j {
		for k := i; k <= j; k++ {
			out = append(out, l.Stations[k].Name)
		}
		return out
	}
	for k := i; k >= j; k-- {
		out = append(out, l.Stations[k].Name)
	}
	return out
}

// JourneyMinutes looks up the typical journey time between two stations,
// keyed "From-To" or the reverse.
func (l *RailwayLine) JourneyMinutes(from, to string) (float64, bool) {
	if l.JourneyTimes == nil {
		return 0, false
	}
	if m, ok := l.JourneyTimes[from+"-"+to]; ok {
		return m, true
	}
	if m, ok := l.JourneyTimes[to+"-"+from]; ok {
		return m, true
	}
	return 0, false
}
