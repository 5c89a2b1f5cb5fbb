package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"railnet.dev/railnet/internal/cache"
	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/routing"
	"railnet.dev/railnet/internal/utils"
)

// Cache operation names. Each is also the key prefix of its entries.
const (
	opSearch   = "search"
	opStation  = "station"
	opRoute    = "route"
	opVia      = "via"
	opValidate = "validate"
)

var catalogOps = []string{opSearch, opStation, opRoute, opVia, opValidate}

// datasetParam carries the catalog fingerprint in every key, so a result
// computed against one snapshot is never read back under another.
const datasetParam = "dataset"

// Engine answers station and route queries against the current catalog,
// memoising results in the tiered cache.
type Engine struct {
	manager *catalog.Manager
	cache   *cache.Tiered
	opts    routing.Options
	logger  *slog.Logger

	mu     sync.RWMutex
	finder *routing.Finder
}

// New wires an engine to manager. A nil cache disables memoisation.
func New(manager *catalog.Manager, c *cache.Tiered, opts routing.Options, logger *slog.Logger) *Engine {
	e := &Engine{
		manager: manager,
		cache:   c,
		opts:    opts,
		logger:  logging.OrDiscard(logger),
	}
	manager.OnReload(e.onReload)
	return e
}

// Catalog returns the current snapshot.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.manager.Catalog()
}

// Finder returns a route finder for the current snapshot, building its graph
// on first use.
func (e *Engine) Finder() *routing.Finder {
	cat := e.manager.Catalog()

	e.mu.RLock()
	f := e.finder
	e.mu.RUnlock()
	if f != nil && f.Catalog() == cat {
		return f
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finder != nil && e.finder.Catalog() == cat {
		return e.finder
	}

	start := time.Now()
	e.finder = routing.NewFinder(cat, nil, e.logger)
	logging.LogOperation(e.logger, "network_built",
		slog.Int("nodes", e.finder.Graph().NodeCount()),
		slog.Int("edges", e.finder.Graph().EdgeCount()),
		slog.Duration("duration", time.Since(start)))
	return e.finder
}

func (e *Engine) onReload(*catalog.Catalog) {
	e.mu.Lock()
	e.finder = nil
	e.mu.Unlock()

	for _, op := range catalogOps {
		e.InvalidateCache(cache.Prefix(op))
	}
}

// SearchStations returns display names matching query.
func (e *Engine) SearchStations(ctx context.Context, query string, limit int) []string {
	if strings.TrimSpace(query) == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = catalog.DefaultSearchLimit
	}
	cat := e.Catalog()
	key := datasetKey(cat, opSearch, map[string]any{"q": query, "limit": limit})
	names := fetch(ctx, e, cache.StrategySearch, key, func(context.Context) ([]string, error) {
		return cat.SearchStations(query, limit), nil
	})
	if names == nil {
		return []string{}
	}
	return names
}

// StationByName resolves a display or canonical name.
func (e *Engine) StationByName(name string) (models.Station, bool) {
	return e.Catalog().StationByName(name)
}

// LinesForStation returns the lines serving name in index order.
func (e *Engine) LinesForStation(name string) []string {
	return e.Catalog().LinesForStation(name)
}

type stationLookup struct {
	Entry models.StationEntry `json:"entry"`
	Found bool                `json:"found"`
}

// StationInfo returns the API view of a station with its lines.
func (e *Engine) StationInfo(ctx context.Context, name string) (models.StationEntry, bool) {
	cat := e.Catalog()
	canonical, ok := cat.Resolve(name)
	if !ok {
		return models.StationEntry{}, false
	}
	key := datasetKey(cat, opStation, map[string]any{"name": canonical})
	res := fetch(ctx, e, cache.StrategyStationData, key, func(context.Context) (stationLookup, error) {
		s, ok := cat.StationByName(canonical)
		if !ok {
			return stationLookup{}, nil
		}
		return stationLookup{Entry: models.NewStationEntry(s, cat.LinesForStation(canonical)), Found: true}, nil
	})
	return res.Entry, res.Found
}

// FindRoutes searches routes between two stations. departure is accepted for
// callers that have one; the static dataset has no timetable to apply it to.
func (e *Engine) FindRoutes(ctx context.Context, from, to string, maxChanges int, departure *time.Time) []models.Route {
	finder := e.Finder()
	cat := finder.Catalog()
	origin, okFrom := cat.Resolve(from)
	destination, okTo := cat.Resolve(to)
	if !okFrom || !okTo {
		return []models.Route{}
	}

	opts := e.opts
	if maxChanges >= 0 {
		opts.MaxChanges = maxChanges
	}
	if departure != nil {
		e.logger.Debug("departure time ignored by static route search",
			slog.String("from", origin),
			slog.String("to", destination),
			slog.Time("departure", *departure))
	}

	key := datasetKey(cat, opRoute, map[string]any{"from": origin, "to": destination, "maxChanges": opts.MaxChanges})
	routes := fetch(ctx, e, cache.StrategyRoute, key, func(ctx context.Context) ([]models.Route, error) {
		routes, err := finder.Search(ctx, origin, destination, opts)
		return routes, notStored(err)
	})
	if routes == nil {
		return []models.Route{}
	}
	return routes
}

// FindRoute returns just the station lists of FindRoutes.
func (e *Engine) FindRoute(ctx context.Context, from, to string, maxChanges int, departure *time.Time) [][]string {
	routes := e.FindRoutes(ctx, from, to, maxChanges, departure)
	out := make([][]string, len(routes))
	for i, r := range routes {
		out[i] = r.Stations
	}
	return out
}

// IdentifyTrainChanges returns the interchange stations of route.
func (e *Engine) IdentifyTrainChanges(route []string) []string {
	return routing.IdentifyTrainChanges(e.Catalog(), route)
}

// SuggestViaStations returns candidate intermediate stations for the pair.
func (e *Engine) SuggestViaStations(ctx context.Context, from, to string, limit int) []string {
	finder := e.Finder()
	cat := finder.Catalog()
	origin, okFrom := cat.Resolve(from)
	destination, okTo := cat.Resolve(to)
	if !okFrom || !okTo {
		return []string{}
	}

	key := datasetKey(cat, opVia, map[string]any{"from": origin, "to": destination, "limit": limit})
	via := fetch(ctx, e, cache.StrategySearch, key, func(ctx context.Context) ([]string, error) {
		via, err := finder.SearchViaStations(ctx, origin, destination, limit)
		return via, notStored(err)
	})
	if via == nil {
		return []string{}
	}
	return via
}

// OperatorForSegment returns the operator running between two stations.
func (e *Engine) OperatorForSegment(from, to string) (string, bool) {
	return routing.OperatorForSegment(e.Catalog(), from, to)
}

// ValidateRoute checks a route's geographic plausibility.
func (e *Engine) ValidateRoute(ctx context.Context, route models.Route) models.ValidationResult {
	cat := e.Catalog()
	key := datasetKey(cat, opValidate, map[string]any{"route": route.Stations, "source": string(route.Source)})
	return fetch(ctx, e, cache.StrategyValidation, key, func(context.Context) (models.ValidationResult, error) {
		return routing.Validate(cat, route), nil
	})
}

// RouteEntry decorates a route with its changes, operators and geometry.
func (e *Engine) RouteEntry(route models.Route) models.RouteEntry {
	finder := e.Finder()
	cat := finder.Catalog()

	operators := []string{}
	for i := 1; i < len(route.Stations); i++ {
		if op, ok := routing.OperatorForSegment(cat, route.Stations[i-1], route.Stations[i]); ok && !containsString(operators, op) {
			operators = append(operators, op)
		}
	}

	heading := models.UnknownValue
	if len(route.Stations) > 1 {
		origin, okA := cat.StationByName(route.Origin())
		destination, okB := cat.StationByName(route.Destination())
		if okA && okB {
			heading = utils.Heading(origin.Coordinates, destination.Coordinates)
		}
	}

	return models.RouteEntry{
		Stations:  route.Stations,
		Cost:      route.Cost,
		Source:    route.Source,
		Changes:   routing.IdentifyTrainChanges(cat, route.Stations),
		Operators: operators,
		Polyline:  EncodePolyline(finder.Graph().Coordinates(route.Stations)),
		Heading:   heading,
	}
}

// CacheStats reports cache counters, zero when caching is disabled.
func (e *Engine) CacheStats() models.CacheStats {
	if e.cache == nil {
		return models.CacheStats{}
	}
	return e.cache.Stats()
}

// InvalidateCache drops cached entries whose key starts with prefix.
func (e *Engine) InvalidateCache(prefix string) int {
	if e.cache == nil {
		return 0
	}
	return e.cache.InvalidatePattern(strings.ToLower(prefix))
}

// Reload reloads the catalog; cached state is dropped by the reload hook.
func (e *Engine) Reload(ctx context.Context) error {
	return e.manager.Reload(ctx)
}

func datasetKey(cat *catalog.Catalog, op string, params map[string]any) string {
	params[datasetParam] = cat.Fingerprint()
	return cache.Key(op, params)
}

// notStored marks a truncated search so its partial result skips the cache.
func notStored(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", cache.ErrNotStored, err)
}

func fetch[T any](ctx context.Context, e *Engine, strategy, key string, compute func(context.Context) (T, error)) T {
	var (
		v   T
		err error
	)
	if e.cache == nil {
		v, err = compute(ctx)
	} else {
		v, err = cache.Fetch(ctx, e.cache, strategy, key, compute)
	}

	switch {
	case err == nil:
	case errors.Is(err, cache.ErrNotStored):
		e.logger.Debug("partial result not cached", slog.String("key", key), slog.String("reason", err.Error()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.logger.Debug("caller gave up waiting", slog.String("key", key), slog.String("error", err.Error()))
	default:
		logging.LogError(e.logger, "Engine computation failed", err, slog.String("key", key))
	}
	return v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
