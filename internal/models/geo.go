package models

// Coordinates is a WGS84 point as stored in the line data files.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point is absent. Datasets write 0,0 for
// stations whose location was never surveyed.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Pair returns the point in lat,lng order for polyline encoding.
func (c Coordinates) Pair() []float64 {
	return []float64{c.Lat, c.Lng}
}
