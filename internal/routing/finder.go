package routing

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/network"
)

const (
	distanceWeight    = 0.1
	patternBonusScale = 2.0
	lineChangePenalty = 15.0

	// ctx is polled every ctxCheckInterval pops.
	ctxCheckInterval = 64
)

// ErrSearchTruncated reports a search that stopped on its iteration cap,
// timeout or cancellation before exhausting the graph. Routes returned with
// it are best effort.
var ErrSearchTruncated = errors.New("route search truncated")

// Finder searches routes over one catalog snapshot and its graph.
type Finder struct {
	catalog *catalog.Catalog
	graph   *network.Graph
	logger  *slog.Logger
}

// NewFinder returns a finder for cat. A nil graph is built from cat.
func NewFinder(cat *catalog.Catalog, graph *network.Graph, logger *slog.Logger) *Finder {
	if graph == nil {
		graph = network.Build(cat)
	}
	return &Finder{catalog: cat, graph: graph, logger: logging.OrDiscard(logger)}
}

func (f *Finder) Catalog() *catalog.Catalog { return f.catalog }

func (f *Finder) Graph() *network.Graph { return f.graph }

// FindRoutes returns up to opts.MaxRoutes routes from origin to destination,
// cheapest first. Unknown stations and unreachable pairs give an empty slice.
// Stations sharing a line get the single direct route along that line.
func (f *Finder) FindRoutes(ctx context.Context, origin, destination string, opts Options) []models.Route {
	routes, _ := f.Search(ctx, origin, destination, opts)
	return routes
}

// Search is FindRoutes that also reports truncation. The error wraps
// ErrSearchTruncated, and the context error when there is one; the routes
// found so far are still returned.
func (f *Finder) Search(ctx context.Context, origin, destination string, opts Options) ([]models.Route, error) {
	opts = opts.withDefaults()

	from, okFrom := f.catalog.Resolve(origin)
	to, okTo := f.catalog.Resolve(destination)
	if !okFrom || !okTo || !f.graph.HasNode(from) || !f.graph.HasNode(to) {
		return []models.Route{}, nil
	}

	if from == to {
		return []models.Route{{Stations: []string{from}, Source: models.RouteSourceDirect}}, nil
	}

	if direct, ok := f.directRoute(from, to, opts); ok {
		return []models.Route{direct}, nil
	}

	return f.search(ctx, from, to, opts)
}

// directRoute returns the shortest slice of any line serving both stations.
func (f *Finder) directRoute(from, to string, opts Options) (models.Route, bool) {
	var best []string
	for _, line := range f.catalog.CommonLines(from, to) {
		slice := line.Slice(from, to)
		if len(slice) < 2 || len(slice) > opts.MaxPathLength {
			continue
		}
		if best == nil || len(slice) < len(best) {
			best = slice
		}
	}
	if best == nil {
		return models.Route{}, false
	}
	return models.Route{Stations: best, Cost: float64(len(best) - 1), Source: models.RouteSourceDirect}, true
}

type visitKey struct {
	station string
	changes int
	pattern string
}

func (f *Finder) search(ctx context.Context, from, to string, opts Options) ([]models.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	routes := []models.Route{}
	found := make(map[string]bool)
	visited := make(map[visitKey]float64)

	seq := 0
	q := &stateQueue{{station: from, path: []string{from}}}
	heap.Init(q)

	var truncated error
	iterations := 0
	for q.Len() > 0 {
		if iterations >= opts.MaxIterations {
			logging.LogWarning(f.logger, "Route search hit iteration cap",
				slog.String("from", from),
				slog.String("to", to),
				slog.Int("iterations", iterations),
				slog.Int("routes_found", len(routes)))
			truncated = fmt.Errorf("%w: %d iterations", ErrSearchTruncated, iterations)
			break
		}
		if iterations%ctxCheckInterval == 0 && ctx.Err() != nil {
			logging.LogWarning(f.logger, "Route search timed out",
				slog.String("from", from),
				slog.String("to", to),
				slog.Int("iterations", iterations),
				slog.Int("routes_found", len(routes)),
				slog.String("error", ctx.Err().Error()))
			truncated = fmt.Errorf("%w: %w", ErrSearchTruncated, ctx.Err())
			break
		}
		iterations++

		cur := heap.Pop(q).(*searchState)

		if cur.station == to {
			key := strings.Join(cur.path, "\x00")
			if !found[key] {
				found[key] = true
				routes = append(routes, models.Route{Stations: cur.path, Cost: cur.cost, Source: models.RouteSourceSearch})
				if len(routes) >= opts.MaxRoutes {
					break
				}
			}
			continue
		}

		vk := visitKey{station: cur.station, changes: cur.changes, pattern: cur.pattern}
		if best, seen := visited[vk]; seen && cur.cost >= best {
			continue
		}
		visited[vk] = cur.cost

		if len(cur.path) >= opts.MaxPathLength {
			continue
		}

		for _, e := range f.graph.Edges(cur.station) {
			if onPath(cur.path, e.To) {
				continue
			}

			changes := cur.changes
			changed := cur.line != "" && e.Line != cur.line
			if changed {
				changes++
			}
			if changes > opts.MaxChanges {
				continue
			}

			path := make([]string, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			path = append(path, e.To)

			seq++
			heap.Push(q, &searchState{
				cost:    cur.cost + edgeCost(e, changed),
				station: e.To,
				path:    path,
				changes: changes,
				line:    e.Line,
				pattern: e.Pattern,
				seq:     seq,
			})
		}
	}

	logging.LogOperation(f.logger, "route_search",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("iterations", iterations),
		slog.Int("routes_found", len(routes)),
		slog.Bool("truncated", truncated != nil),
		slog.Duration("duration", time.Since(start)))

	return routes, truncated
}

// edgeCost is travel minutes plus a distance term, less a bonus for faster
// patterns, plus a penalty when the edge changes line.
func edgeCost(e network.Edge, lineChange bool) float64 {
	cost := e.Minutes
	if !math.IsInf(e.DistanceKM, 0) {
		cost += e.DistanceKM * distanceWeight
	}
	cost -= float64(4-e.Priority) * patternBonusScale
	if lineChange {
		cost += lineChangePenalty
	}
	return cost
}

func onPath(path []string, station string) bool {
	for _, s := range path {
		if s == station {
			return true
		}
	}
	return false
}
