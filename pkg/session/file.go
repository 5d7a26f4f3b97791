package session

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
)

const fileExt = ".toml"

// FileStore keeps one TOML file per session in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the store, creating baseDir if needed.
// If baseDir is empty, defaults to ~/.config/tuigraph/sessions/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "create session dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns the default session directory, honouring
// XDG_CONFIG_HOME.
func DefaultDir() (string, error) {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "tuigraph", "sessions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeIO, err, "get home dir")
	}
	return filepath.Join(home, ".config", "tuigraph", "sessions"), nil
}

func (s *FileStore) sessionPath(id string) string {
	return filepath.Join(s.baseDir, id+fileExt)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read session file")
	}
	return Decode(data)
}

func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.WriteFileAtomic(s.sessionPath(sess.ID), data)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.sessionPath(id)); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeIO, err, "remove session file")
	}
	return nil
}

// List skips files that fail to decode.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "read session dir")
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		sess, err := Decode(data)
		if err != nil {
			continue
		}
		out = append(out, sess.Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for session files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func sortSummaries(out []Summary) {
	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

var _ Store = (*FileStore)(nil)
