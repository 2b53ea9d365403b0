package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenFileCacheMissingDir(t *testing.T) {
	redirectCache(t)

	fc, err := openFileCache()
	if err != nil {
		t.Fatalf("openFileCache() error: %v", err)
	}
	if fc != nil {
		t.Error("openFileCache() should return nil before the cache exists")
	}
}

func TestOpenFileCacheExisting(t *testing.T) {
	redirectCache(t)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "entry"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := openFileCache()
	if err != nil {
		t.Fatalf("openFileCache() error: %v", err)
	}
	if fc == nil {
		t.Fatal("openFileCache() returned nil for an existing cache")
	}
	defer fc.Close()

	entries, size, err := fc.Stats()
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if entries != 1 || size != 1 {
		t.Errorf("Stats() = (%d, %d), want (1, 1)", entries, size)
	}
}
