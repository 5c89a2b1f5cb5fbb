package models

// Station is a single stop in the catalog, keyed by its canonical name.
type Station struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Zone        string      `json:"zone,omitempty"`
	Interchange []string    `json:"interchange,omitempty"`
}

// IsMajorInterchange reports whether at least two other lines can be reached from the station.
func (s Station) IsMajorInterchange() bool {
	return len(s.Interchange) >= 2
}
