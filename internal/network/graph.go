package network

import (
	"math"

	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/utils"
)

// MinEdgeMinutes is the floor for estimated journey times between adjacent calls.
const MinEdgeMinutes = 2.0

// minutesPerKM converts distance to a base journey time before the service
// multiplier is applied.
const minutesPerKM = 1.5

// Node is a station in the graph.
type Node struct {
	Name             string
	Coordinates      models.Coordinates
	Interchange      []string
	MajorInterchange bool
}

// Edge is a directed hop between consecutive calls of one service pattern.
type Edge struct {
	To         string
	DistanceKM float64
	Minutes    float64
	Line       string
	Pattern    string
	Priority   int
}

// Graph is an immutable service-aware network built from a catalog.
type Graph struct {
	nodes     map[string]*Node
	edges     map[string][]Edge
	edgeCount int
}

// Build derives the network from the catalog. Lines with service patterns
// contribute one edge per consecutive pair of served stations per pattern;
// lines without patterns contribute legacy edges between adjacent stations.
// Every edge is added in both directions with identical costs.
func Build(cat *catalog.Catalog) *Graph {
	g := &Graph{
		nodes: make(map[string]*Node, cat.StationCount()),
		edges: make(map[string][]Edge, cat.StationCount()),
	}

	for _, s := range cat.Stations() {
		g.nodes[s.Name] = &Node{
			Name:             s.Name,
			Coordinates:      s.Coordinates,
			Interchange:      s.Interchange,
			MajorInterchange: s.IsMajorInterchange(),
		}
	}

	for _, line := range cat.Lines() {
		if !line.HasPatterns() {
			g.addRun(line, line.StationNames(), models.LegacyPattern, models.LegacyPriority, models.ServiceUnknown.SpeedMultiplier())
			continue
		}
		for _, code := range line.Patterns.Codes() {
			p := line.Patterns.Patterns[code]
			g.addRun(line, p.ServedStations(line), code, p.Priority(), p.Type.SpeedMultiplier())
		}
	}

	return g
}

func (g *Graph) addRun(line *models.RailwayLine, stations []string, pattern string, priority int, multiplier float64) {
	for i := 1; i < len(stations); i++ {
		from, to := stations[i-1], stations[i]
		a, okA := g.nodes[from]
		b, okB := g.nodes[to]
		if !okA || !okB {
			continue
		}

		km := DistanceKM(a.Coordinates, b.Coordinates)
		minutes := EstimateMinutes(line, from, to, km, multiplier)

		g.edges[from] = append(g.edges[from], Edge{To: to, DistanceKM: km, Minutes: minutes, Line: line.Name, Pattern: pattern, Priority: priority})
		g.edges[to] = append(g.edges[to], Edge{To: from, DistanceKM: km, Minutes: minutes, Line: line.Name, Pattern: pattern, Priority: priority})
		g.edgeCount += 2
	}
}

// EstimateMinutes prefers the line's typical journey time and otherwise
// scales distance by the service multiplier, never going below MinEdgeMinutes.
func EstimateMinutes(line *models.RailwayLine, from, to string, km, multiplier float64) float64 {
	if m, ok := line.JourneyMinutes(from, to); ok {
		return m
	}
	if math.IsInf(km, 0) || math.IsNaN(km) {
		return MinEdgeMinutes
	}
	return math.Max(MinEdgeMinutes, km*minutesPerKM*multiplier)
}

// DistanceKM is the great-circle distance between two points, or +Inf when
// either point is missing.
func DistanceKM(a, b models.Coordinates) float64 {
	if a.IsZero() || b.IsZero() {
		return math.Inf(1)
	}
	return utils.HaversineKM(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Node returns the named node.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Edges returns the outgoing edges of name. The slice must not be modified.
func (g *Graph) Edges(name string) []Edge {
	return g.edges[name]
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return g.edgeCount }

// Distance between two named stations, +Inf if either is unknown or unplaced.
func (g *Graph) Distance(from, to string) float64 {
	a, okA := g.nodes[from]
	b, okB := g.nodes[to]
	if !okA || !okB {
		return math.Inf(1)
	}
	return DistanceKM(a.Coordinates, b.Coordinates)
}

// Coordinates returns the placed coordinates of each named station in order,
// skipping stations without a location.
func (g *Graph) Coordinates(names []string) []models.Coordinates {
	out := make([]models.Coordinates, 0, len(names))
	for _, name := range names {
		if n, ok := g.nodes[name]; ok && !n.Coordinates.IsZero() {
			out = append(out, n.Coordinates)
		}
	}
	return out
}
