package models

// RouteSource records how a route was produced. Validation strictness
// depends on it.
type RouteSource string

const (
	RouteSourceDirect RouteSource = "direct"
	RouteSourceSearch RouteSource = "search"
	RouteSourceUser   RouteSource = "user"
)

// Route is an ordered list of station names from origin to destination.
type Route struct {
	Stations []string    `json:"stations"`
	Cost     float64     `json:"cost"`
	Source   RouteSource `json:"source"`
}

// Origin of the route, or "" for an empty route.
func (r Route) Origin() string {
	if len(r.Stations) == 0 {
		return ""
	}
	return r.Stations[0]
}

// Destination of the route, or "" for an empty route.
func (r Route) Destination() string {
	if len(r.Stations) == 0 {
		return ""
	}
	return r.Stations[len(r.Stations)-1]
}

// Intermediate returns the stations strictly between origin and destination.
func (r Route) Intermediate() []string {
	if len(r.Stations) <= 2 {
		return nil
	}
	return r.Stations[1 : len(r.Stations)-1]
}

// HasCycle reports whether any station appears twice.
func (r Route) HasCycle() bool {
	seen := make(map[string]bool, len(r.Stations))
	for _, s := range r.Stations {
		if seen[s] {
			return true
		}
		seen[s] = true
	}
	return false
}

// IsUserComposed reports whether the route was assembled by hand. A route
// with no recorded source counts as hand made.
func (r Route) IsUserComposed() bool {
	return r.Source == RouteSourceUser || r.Source == ""
}
