package utils

import (
	"math"

	"railnet.dev/railnet/internal/models"
)

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// BearingBetweenPoints calculates the initial bearing in degrees from point1 to point2
func BearingBetweenPoints(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(deltaLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	return math.Mod(math.Atan2(y, x)*180/math.Pi+360, 360)
}

// BearingToCompass converts a bearing (0-360°) to 8-point compass direction
func BearingToCompass(bearing float64) string {
	return compassPoints[int((bearing+22.5)/45.0)%8]
}

// Heading returns the compass direction of travel between two stations.
// Stations without coordinates have no heading.
func Heading(from, to models.Coordinates) string {
	if from.IsZero() || to.IsZero() || from == to {
		return models.UnknownValue
	}
	return BearingToCompass(BearingBetweenPoints(from.Lat, from.Lng, to.Lat, to.Lng))
}
