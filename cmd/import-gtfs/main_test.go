package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railnet.dev/railnet/internal/logging"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"-source", "feed.zip"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "feed.zip", opts.source)
	assert.Equal(t, "data", opts.outDir)
	assert.Equal(t, []int{railRouteType}, opts.routeTypes)

	opts, err = parseOptions([]string{"-source", "feed.zip", "-route-types", ""}, io.Discard)
	require.NoError(t, err)
	assert.Empty(t, opts.routeTypes)

	_, err = parseOptions(nil, io.Discard)
	assert.Error(t, err, "source is required")

	_, err = parseOptions([]string{"-source", "feed.zip", "-route-types", "rail"}, io.Discard)
	assert.Error(t, err)
}

func TestParseRouteTypes(t *testing.T) {
	types, err := parseRouteTypes(" 2, 1,,12 ")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 12}, types)
}

func TestRouteFilter(t *testing.T) {
	swr := &gtfs.Agency{Id: "swr"}
	gwr := &gtfs.Agency{Id: "gwr"}

	tests := []struct {
		name     string
		types    []int
		agency   string
		route    gtfs.Route
		expected bool
	}{
		{"rail matches", []int{2}, "", gtfs.Route{Id: "a", Agency: swr, Type: 2}, true},
		{"bus rejected", []int{2}, "", gtfs.Route{Id: "b", Agency: swr, Type: 3}, false},
		{"no types matches all", nil, "", gtfs.Route{Id: "c", Agency: swr, Type: 3}, true},
		{"agency matches", []int{2}, "swr", gtfs.Route{Id: "d", Agency: swr, Type: 2}, true},
		{"other agency rejected", []int{2}, "swr", gtfs.Route{Id: "e", Agency: gwr, Type: 2}, false},
		{"missing agency rejected", nil, "swr", gtfs.Route{Id: "f"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := tt.route
			assert.Equal(t, tt.expected, routeFilter(tt.types, tt.agency)(&route))
		})
	}
}

func TestRun_MissingSource(t *testing.T) {
	err := run(context.Background(), options{
		source: filepath.Join(t.TempDir(), "missing.zip"),
		outDir: t.TempDir(),
	}, logging.Discard())
	assert.Error(t, err)
}
