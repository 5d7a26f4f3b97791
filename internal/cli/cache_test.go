package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/tuigraph/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestOpenRenderCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if _, ok := openRenderCache(true).(cache.NullCache); !ok {
		t.Error("disabled cache should be a NullCache")
	}
	fc, ok := openRenderCache(false).(*cache.FileCache)
	if !ok {
		t.Fatal("enabled cache should be a FileCache")
	}
	if !strings.HasSuffix(fc.Dir(), appName) {
		t.Errorf("cache dir = %q", fc.Dir())
	}
}

func TestCacheCommands(t *testing.T) {
	// runCLI leaves XDG_CACHE_HOME alone.
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	out, _, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(xdg, appName) {
		t.Errorf("cache path = %q", out)
	}

	out, _, err = runCLI(t, "cache", "clear")
	if err != nil || !strings.Contains(out, "Cache is empty") {
		t.Fatalf("clear on empty cache: %v\n%s", err, out)
	}

	fc, err := cache.NewFileCache(filepath.Join(xdg, appName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, cache.RenderKey("svg", "a"), []byte("a"), 0); err != nil {
		t.Fatal(err)
	}
	// The expiry file of a ttl entry is not counted separately.
	if err := fc.Set(ctx, cache.RenderKey("png", "b"), []byte("b"), time.Hour); err != nil {
		t.Fatal(err)
	}

	out, _, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("clear output:\n%s", out)
	}
	if _, hit, _ := fc.Get(ctx, cache.RenderKey("svg", "a")); hit {
		t.Error("entries should be gone after clear")
	}
}
