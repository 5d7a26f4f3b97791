package cache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
)

// expirySuffix names the sidecar holding an entry's expiry time.
const expirySuffix = ".expires"

// FileCache keeps each entry as a plain file at dir/key, so a cached SVG can
// be opened directly. Entries stored with a ttl get a sidecar file next to
// them holding the expiry as RFC 3339 text; entries without one never expire.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "create cache dir %s", dir)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get returns the bytes stored under key. Expired entries are removed and
// reported as a miss.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := c.path(key)
	if err != nil {
		return nil, false, err
	}
	if c.expired(path) {
		c.remove(path)
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeIO, err, "read cache entry %s", key)
	}
	return data, true, nil
}

// Set stores data under key. Both files are written atomically, since
// concurrent API requests may render the same preview.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create cache dir")
	}
	if ttl <= 0 {
		_ = os.Remove(path + expirySuffix)
	} else {
		stamp := c.now().Add(ttl).UTC().Format(time.RFC3339Nano)
		if err := graph.WriteFileAtomic(path+expirySuffix, []byte(stamp)); err != nil {
			return err
		}
	}
	return graph.WriteFileAtomic(path, data)
}

// Delete removes key. A missing key is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	c.remove(path)
	return nil
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry and returns how many there were. Expiry sidecars
// are removed along with their entries and not counted.
func (c *FileCache) Clear() (int, error) {
	count := 0
	var dirs []string
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != c.dir {
				dirs = append(dirs, path)
			}
			return nil
		}
		if os.Remove(path) == nil && !strings.HasSuffix(path, expirySuffix) {
			count++
		}
		return nil
	})
	if err != nil {
		return count, errs.Wrap(errs.ErrCodeIO, err, "clear cache")
	}
	// Deepest first, so parents are empty by the time they are removed.
	for i := len(dirs) - 1; i >= 0; i-- {
		_ = os.Remove(dirs[i])
	}
	return count, nil
}

// expired reports whether path has a sidecar whose time has passed. An
// unreadable sidecar counts as expired.
func (c *FileCache) expired(path string) bool {
	stamp, err := os.ReadFile(path + expirySuffix)
	if os.IsNotExist(err) {
		return false
	}
	if err != nil {
		return true
	}
	at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(stamp)))
	return err != nil || !c.now().Before(at)
}

func (c *FileCache) remove(path string) {
	_ = os.Remove(path)
	_ = os.Remove(path + expirySuffix)
}

// path maps key to a file under the cache dir. Keys are slash separated
// relative paths, as RenderKey builds them.
func (c *FileCache) path(key string) (string, error) {
	if key == "" || strings.HasSuffix(key, expirySuffix) || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", errs.New(errs.ErrCodeInvalidInput, "invalid cache key %q", key)
	}
	return filepath.Join(c.dir, filepath.FromSlash(key)), nil
}

var _ Cache = (*FileCache)(nil)
