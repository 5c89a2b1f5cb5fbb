package network

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/models"
)

func fixtureGraph(t *testing.T) (*catalog.Catalog, *Graph) {
	t.Helper()
	cat, err := catalog.NewLoader(models.GetFixturePath(t, "network"), nil, nil).Load(context.Background())
	require.NoError(t, err)
	return cat, Build(cat)
}

func findEdge(g *Graph, from, to, pattern string) (Edge, bool) {
	for _, e := range g.Edges(from) {
		if e.To == to && e.Pattern == pattern {
			return e, true
		}
	}
	return Edge{}, false
}

func TestBuild_Counts(t *testing.T) {
	cat, g := fixtureGraph(t)

	assert.Equal(t, cat.StationCount(), g.NodeCount())
	// SWML 4+2 pairs, Brighton 4+2, Reading legacy 3, Island 2; both directions.
	assert.Equal(t, 34, g.EdgeCount())
}

func TestBuild_Symmetry(t *testing.T) {
	cat, g := fixtureGraph(t)

	for _, s := range cat.Stations() {
		for _, e := range g.Edges(s.Name) {
			back, ok := findEdge(g, e.To, s.Name, e.Pattern)
			require.True(t, ok, "%s -> %s (%s) has no reverse", s.Name, e.To, e.Pattern)
			assert.Equal(t, e.Line, back.Line)
			assert.Equal(t, e.Minutes, back.Minutes)
			assert.Equal(t, e.DistanceKM, back.DistanceKM)
			assert.Equal(t, e.Priority, back.Priority)
		}
	}
}

func TestBuild_PatternEdges(t *testing.T) {
	_, g := fixtureGraph(t)

	tests := []struct {
		name     string
		from     string
		to       string
		pattern  string
		minutes  float64
		priority int
	}{
		{"stopping uses journey table", "London Waterloo", "Clapham Junction", "stopping", 6, 4},
		{"fast skips intermediate calls", "London Waterloo", "Woking", "fast", 24, 2},
		{"reverse key lookup", "London Victoria", "Gatwick Airport", "express", 30, 1},
		{"legacy edge", "Bramley", "Basingstoke", models.LegacyPattern, 0, models.LegacyPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := findEdge(g, tt.from, tt.to, tt.pattern)
			require.True(t, ok)
			assert.Equal(t, tt.priority, e.Priority)
			if tt.minutes > 0 {
				assert.Equal(t, tt.minutes, e.Minutes)
			}
		})
	}

	_, ok := findEdge(g, "London Waterloo", "Woking", "stopping")
	assert.False(t, ok, "stopping services call at Clapham Junction first")
}

func TestBuild_EstimatedMinutes(t *testing.T) {
	_, g := fixtureGraph(t)

	croydon, _ := g.Node("East Croydon")
	gatwick, _ := g.Node("Gatwick Airport")
	km := DistanceKM(croydon.Coordinates, gatwick.Coordinates)
	require.False(t, math.IsInf(km, 0))

	e, ok := findEdge(g, "East Croydon", "Gatwick Airport", "stopping")
	require.True(t, ok)
	assert.InDelta(t, km*1.5*models.ServiceStopping.SpeedMultiplier(), e.Minutes, 1e-9)

	legacy, ok := findEdge(g, "Bramley", "Basingstoke", models.LegacyPattern)
	require.True(t, ok)
	assert.InDelta(t, legacy.DistanceKM*1.5*1.2, legacy.Minutes, 1e-9)
}

func TestBuild_UnplacedStation(t *testing.T) {
	_, g := fixtureGraph(t)

	e, ok := findEdge(g, "Reading", "Mortimer", models.LegacyPattern)
	require.True(t, ok)
	assert.True(t, math.IsInf(e.DistanceKM, 1))
	assert.Equal(t, MinEdgeMinutes, e.Minutes)

	assert.True(t, math.IsInf(g.Distance("Reading", "Mortimer"), 1))
	assert.True(t, math.IsInf(g.Distance("Reading", "Nowhere"), 1))
}

func TestBuild_Nodes(t *testing.T) {
	_, g := fixtureGraph(t)

	clapham, ok := g.Node("Clapham Junction")
	require.True(t, ok)
	assert.True(t, clapham.MajorInterchange)

	woking, ok := g.Node("Woking")
	require.True(t, ok)
	assert.False(t, woking.MajorInterchange)

	_, ok = g.Node("Nowhere")
	assert.False(t, ok)
	assert.False(t, g.HasNode("Nowhere"))
	assert.Empty(t, g.Edges("Nowhere"))

	coords := g.Coordinates([]string{"Reading", "Mortimer", "Bramley"})
	assert.Len(t, coords, 2)
}

func TestDistanceKM(t *testing.T) {
	waterloo := models.Coordinates{Lat: 51.5031, Lng: -0.1132}
	woking := models.Coordinates{Lat: 51.3185, Lng: -0.5569}

	assert.InDelta(t, 37.0, DistanceKM(waterloo, woking), 1.0)
	assert.Equal(t, DistanceKM(waterloo, woking), DistanceKM(woking, waterloo))
	assert.True(t, math.IsInf(DistanceKM(waterloo, models.Coordinates{}), 1))
}

func TestEstimateMinutes(t *testing.T) {
	line := &models.RailwayLine{Name: "Test Line"}

	assert.Equal(t, MinEdgeMinutes, EstimateMinutes(line, "A", "B", 0.5, 1.0))
	assert.InDelta(t, 15.0, EstimateMinutes(line, "A", "B", 10, 1.0), 1e-9)
	assert.Equal(t, MinEdgeMinutes, EstimateMinutes(line, "A", "B", math.Inf(1), 1.0))

	line.JourneyTimes = map[string]float64{"B-A": 7}
	assert.Equal(t, 7.0, EstimateMinutes(line, "A", "B", 10, 1.0))
}
