package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railnet.dev/railnet/internal/cache"
	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/models"
	"railnet.dev/railnet/internal/routing"
)

func copyDataset(t *testing.T) string {
	t.Helper()
	src := models.GetFixturePath(t, "network")
	dst := t.TempDir()
	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644))
	}
	return dst
}

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	if dir == "" {
		dir = models.GetFixturePath(t, "network")
	}
	manager, err := catalog.NewManager(context.Background(), catalog.NewLoader(dir, []string{"London Waterloo"}, nil))
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	c, err := cache.New(cache.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	return New(manager, c, routing.DefaultOptions(), nil)
}

func TestEngine_FindRoute(t *testing.T) {
	e := newTestEngine(t, "")
	ctx := context.Background()

	routes := e.FindRoute(ctx, "London Waterloo", "Farnborough (Main)", 3, nil)
	assert.Equal(t, [][]string{{"London Waterloo", "Clapham Junction", "Woking", "Farnborough (Main)"}}, routes)

	departure := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, routes, e.FindRoute(ctx, "london waterloo", "Farnborough (Main)", 3, &departure))

	assert.GreaterOrEqual(t, e.CacheStats().L1Hits, int64(1), "second lookup is served from cache")

	empty := e.FindRoute(ctx, "London Waterloo", "Shanklin", 3, nil)
	require.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.Empty(t, e.FindRoute(ctx, "Nowhere Parkway", "Woking", 3, nil))
}

func TestEngine_MaxChangesIsPartOfTheKey(t *testing.T) {
	e := newTestEngine(t, "")
	ctx := context.Background()

	assert.NotEmpty(t, e.FindRoutes(ctx, "London Waterloo", "Brighton", 1, nil))
	assert.Empty(t, e.FindRoutes(ctx, "London Waterloo", "Brighton", 0, nil))
}

func TestEngine_StationQueries(t *testing.T) {
	e := newTestEngine(t, "")
	ctx := context.Background()

	assert.Equal(t, []string{"Farnborough (Main)"}, e.SearchStations(ctx, "farnb", 5))
	assert.Equal(t, []string{}, e.SearchStations(ctx, " ", 5))

	s, ok := e.StationByName("Clapham Junction (South Western Main Line)")
	require.True(t, ok)
	assert.Equal(t, "Clapham Junction", s.Name)
	assert.Equal(t, []string{"South Western Main Line", "Brighton Main Line"}, e.LinesForStation("Clapham Junction"))

	entry, ok := e.StationInfo(ctx, "clapham junction")
	require.True(t, ok)
	assert.Equal(t, "Clapham Junction", entry.Name)
	assert.True(t, entry.MajorInterchange)
	assert.Equal(t, []string{"South Western Main Line", "Brighton Main Line"}, entry.Lines)

	cached, ok := e.StationInfo(ctx, "Clapham Junction")
	require.True(t, ok)
	assert.Equal(t, entry, cached)

	_, ok = e.StationInfo(ctx, "Nowhere Parkway")
	assert.False(t, ok)
}

func TestEngine_PostProcessing(t *testing.T) {
	e := newTestEngine(t, "")
	ctx := context.Background()

	assert.Equal(t, []string{"Clapham Junction"},
		e.IdentifyTrainChanges([]string{"London Waterloo", "Clapham Junction", "East Croydon"}))

	op, ok := e.OperatorForSegment("London Victoria", "Brighton")
	assert.True(t, ok)
	assert.Equal(t, "Southern", op)

	assert.Equal(t, []string{"Clapham Junction", "Woking"}, e.SuggestViaStations(ctx, "London Waterloo", "Farnborough (Main)", 5))
	assert.Equal(t, []string{}, e.SuggestViaStations(ctx, "London Waterloo", "Nowhere Parkway", 5))

	result := e.ValidateRoute(ctx, models.Route{Stations: []string{"London Waterloo", "Brighton"}, Source: models.RouteSourceUser})
	assert.False(t, result.Valid)
	result = e.ValidateRoute(ctx, models.Route{Stations: []string{"London Waterloo", "Brighton"}, Source: models.RouteSourceSearch})
	assert.True(t, result.Valid)
}

func TestEngine_RouteEntry(t *testing.T) {
	e := newTestEngine(t, "")

	entry := e.RouteEntry(models.Route{
		Stations: []string{"Reading", "Mortimer", "Bramley", "Basingstoke", "Woking"},
		Source:   models.RouteSourceSearch,
	})
	assert.Equal(t, []string{"Basingstoke"}, entry.Changes)
	assert.Equal(t, []string{"Great Western Railway", "South Western Railway"}, entry.Operators)
	assert.NotEmpty(t, entry.Polyline)
	assert.Equal(t, "SE", entry.Heading)

	single := e.RouteEntry(models.Route{Stations: []string{"Woking"}, Source: models.RouteSourceDirect})
	assert.Equal(t, models.UnknownValue, single.Heading)

	_, err := json.Marshal(entry)
	assert.NoError(t, err)
}

func TestEngine_ReloadDropsCachedState(t *testing.T) {
	dir := copyDataset(t)
	e := newTestEngine(t, dir)
	ctx := context.Background()

	assert.Equal(t, []string{"Shanklin"}, e.SearchStations(ctx, "shanklin", 5))
	before := e.Finder()

	index := `{"lines":[{"name":"South Western Main Line","file":"south_western_main_line.json","operator":"South Western Railway"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.IndexFile), []byte(index), 0o644))
	require.NoError(t, e.Reload(ctx))

	assert.Equal(t, []string{}, e.SearchStations(ctx, "shanklin", 5))
	assert.NotSame(t, before, e.Finder())
	assert.Equal(t, 5, e.Catalog().StationCount())
}

func TestEngine_TruncatedSearchIsNotCached(t *testing.T) {
	t.Run("caller cancelled", func(t *testing.T) {
		e := newTestEngine(t, "")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		routes := e.FindRoutes(ctx, "London Waterloo", "Brighton", 1, nil)
		require.NotNil(t, routes)
		assert.NotEmpty(t, e.FindRoutes(context.Background(), "London Waterloo", "Brighton", 1, nil),
			"an abandoned request does not poison the pair")
	})

	t.Run("iteration cap", func(t *testing.T) {
		manager, err := catalog.NewManager(context.Background(), catalog.NewLoader(models.GetFixturePath(t, "network"), nil, nil))
		require.NoError(t, err)
		c, err := cache.New(cache.DefaultConfig())
		require.NoError(t, err)
		t.Cleanup(c.Shutdown)

		opts := routing.DefaultOptions()
		opts.MaxIterations = 1
		e := New(manager, c, opts, nil)

		for i := 0; i < 2; i++ {
			routes := e.FindRoutes(context.Background(), "London Waterloo", "Brighton", 1, nil)
			require.NotNil(t, routes)
			assert.Empty(t, routes)
		}
		stats := e.CacheStats()
		assert.Equal(t, int64(0), stats.Puts)
		assert.Equal(t, int64(0), stats.L1Hits)
	})
}

func TestEngine_KeysCarryDatasetFingerprint(t *testing.T) {
	dir := copyDataset(t)
	e := newTestEngine(t, dir)
	ctx := context.Background()

	stale, err := json.Marshal([]models.Route{{Stations: []string{"London Waterloo", "Stale Halt"}, Source: models.RouteSourceSearch}})
	require.NoError(t, err)
	keyFor := func(fingerprint string) string {
		return cache.Key(opRoute, map[string]any{
			datasetParam: fingerprint,
			"from":       "London Waterloo",
			"to":         "Woking",
			"maxChanges": 3,
		})
	}

	before := e.Catalog().Fingerprint()
	require.NotEmpty(t, before)
	e.cache.Put(keyFor(before), stale, 0)
	assert.Equal(t, [][]string{{"London Waterloo", "Stale Halt"}}, e.FindRoute(ctx, "London Waterloo", "Woking", 3, nil))

	index := `{"lines":[{"name":"South Western Main Line","file":"south_western_main_line.json","operator":"South Western Railway"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.IndexFile), []byte(index), 0o644))
	require.NoError(t, e.Reload(ctx))
	require.NotEqual(t, before, e.Catalog().Fingerprint())

	// a compute that started before the reload writes back late
	e.cache.Put(keyFor(before), stale, 0)

	assert.Equal(t, [][]string{{"London Waterloo", "Clapham Junction", "Woking"}}, e.FindRoute(ctx, "London Waterloo", "Woking", 3, nil))
}

func TestEngine_WithoutCache(t *testing.T) {
	manager, err := catalog.NewManager(context.Background(), catalog.NewLoader(models.GetFixturePath(t, "network"), nil, nil))
	require.NoError(t, err)
	e := New(manager, nil, routing.DefaultOptions(), nil)

	assert.Equal(t, [][]string{{"Woking", "Farnborough (Main)"}}, e.FindRoute(context.Background(), "Woking", "Farnborough (Main)", 3, nil))
	assert.Equal(t, models.CacheStats{}, e.CacheStats())
	assert.Equal(t, 0, e.InvalidateCache("route:"))
}

func TestEncodePolyline(t *testing.T) {
	points := []models.Coordinates{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", EncodePolyline(points))
	assert.Equal(t, "", EncodePolyline(nil))
}
