package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"railnet.dev/railnet/internal/models"
)

func fixtureDir(t *testing.T) string {
	t.Helper()
	return models.GetFixturePath(t, "network")
}

func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	cat, err := NewLoader(fixtureDir(t), []string{"London Waterloo", "Clapham Junction"}, nil).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cat)
	return cat
}

// copyFixture copies the fixture dataset into a temp dir the test may modify.
func copyFixture(t *testing.T) string {
	t.Helper()
	src := fixtureDir(t)
	dst := t.TempDir()

	entries, err := os.ReadDir(src)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, e.Name()), data, 0o644))
	}
	return dst
}
