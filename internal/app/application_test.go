package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railnet.dev/railnet/internal/appconf"
	"railnet.dev/railnet/internal/models"
)

func testConfig(t *testing.T) appconf.Config {
	cfg := appconf.Default()
	cfg.Env = "test"
	cfg.Dataset.Dir = models.GetFixturePath(t, "network")
	cfg.Dataset.KeyStations = []string{"London Waterloo"}
	return cfg
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")

	application, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(application.Shutdown)

	assert.Equal(t, 15, application.Catalog.Catalog().StationCount())
	assert.FileExists(t, filepath.Join(cfg.Cache.Dir, CacheFileName))

	routes := application.Engine.FindRoute(context.Background(), "London Waterloo", "Woking", -1, nil)
	require.NotEmpty(t, routes)
	assert.Equal(t, "Woking", routes[0][len(routes[0])-1])
}

func TestNew_MissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Dir = t.TempDir()

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNew_MissingKeyStation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.KeyStations = []string{"Edinburgh Waverley"}

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestSearchOptions(t *testing.T) {
	cfg := appconf.Default()
	cfg.Search.MaxChanges = 0
	cfg.Search.MaxRoutes = 5
	cfg.Search.Timeout = 2 * time.Second

	opts := SearchOptions(cfg)
	assert.Equal(t, 0, opts.MaxChanges)
	assert.Equal(t, 5, opts.MaxRoutes)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, models.MaxPathLength, opts.MaxPathLength)
}

func TestCacheConfig(t *testing.T) {
	cfg := appconf.Default()
	assert.Empty(t, CacheConfig(cfg, nil).DiskPath, "no cache dir disables the disk tier")

	cfg.Cache.Dir = t.TempDir()
	cfg.Cache.L1Size = 10
	cc := CacheConfig(cfg, nil)
	assert.Equal(t, filepath.Join(cfg.Cache.Dir, CacheFileName), cc.DiskPath)
	assert.Equal(t, 10, cc.L1Size)
}
