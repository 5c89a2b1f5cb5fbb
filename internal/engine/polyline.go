package engine

import (
	"github.com/twpayne/go-polyline"

	"railnet.dev/railnet/internal/models"
)

// EncodePolyline encodes points with the Google polyline algorithm.
func EncodePolyline(points []models.Coordinates) string {
	if len(points) == 0 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = p.Pair()
	}
	return string(polyline.EncodeCoords(coords))
}
