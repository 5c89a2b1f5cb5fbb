package models

import (
	"path/filepath"
	"testing"
)

// GetFixturePath returns the absolute path to a fixture in the "testdata" directory relative to the project's root.
// Callers are expected to live two levels below the root (internal/<pkg>).
func GetFixturePath(t *testing.T, fixturePath string) string {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("..", "..", "testdata", fixturePath))
	if err != nil {
		t.Fatalf("Failed to get absolute path to testdata/%s: %v", fixturePath, err)
	}

	return absPath
}
