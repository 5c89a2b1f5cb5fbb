package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKM(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		expected   float64
		delta      float64
	}{
		{"same point", 51.5031, -0.1132, 51.5031, -0.1132, 0, 1e-9},
		{"Waterloo to Woking", 51.5031, -0.1132, 51.3185, -0.5570, 37.0, 1.0},
		{"London to Edinburgh", 51.5074, -0.1278, 55.9533, -3.1883, 534, 5},
		{"quarter meridian", 0, 0, 90, 0, 10007.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKM(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, got, tt.delta)
		})
	}
}

func TestHaversineKM_Symmetric(t *testing.T) {
	a := HaversineKM(51.4643, -0.1704, 51.2966, -0.7552)
	b := HaversineKM(51.2966, -0.7552, 51.4643, -0.1704)
	assert.InDelta(t, a, b, 1e-9)
}
