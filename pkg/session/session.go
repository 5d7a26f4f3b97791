// Package session persists editor sessions: a graph in progress together
// with the catalog and output paths it is being edited against.
//
// Three backends implement [Store]:
//   - [FileStore]: one TOML file per session under a config directory (CLI default)
//   - [RedisStore]: shared storage for several editors or API instances
//   - [MongoStore]: durable storage in a MongoDB collection
//
// All backends store the same TOML payload produced by [Encode], so a
// session can be moved between backends byte for byte.
//
//	store, err := session.NewFileStore("") // ~/.config/tuigraph/sessions
//	sess := session.New("lane 1", g)
//	err = store.Set(ctx, sess)
//	sess, err = store.Get(ctx, sess.ID)
package session

import (
	"bytes"
	"context"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
)

// Session is a saved editing session.
type Session struct {
	ID          string
	Name        string
	CatalogPath string
	OutputPath  string
	Graph       *graph.Graph
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary is the listing form of a session.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the listing form of s.
func (s *Session) Summary() Summary {
	sum := Summary{ID: s.ID, Name: s.Name, UpdatedAt: s.UpdatedAt}
	if s.Graph != nil {
		sum.Nodes = len(s.Graph.Nodes)
		sum.Edges = len(s.Graph.Edges)
	}
	return sum
}

// Touch records a modification.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Store is implemented by the session backends.
type Store interface {
	// Get returns the session or an error with code SESSION_NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)
	// Set creates or replaces a session.
	Set(ctx context.Context, sess *Session) error
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// List returns summaries ordered by most recent update first.
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// New creates a session with a fresh id. A nil graph starts empty.
func New(name string, g *graph.Graph) *Session {
	if g == nil {
		g = graph.New()
	}
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Graph:     g,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateID rejects ids that are not UUIDs, which also keeps file and key
// names safe.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid session id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeSessionNotFound, "session %s not found", id)
}

// =============================================================================
// Payload
// =============================================================================

type payload struct {
	Session payloadMeta `toml:"session"`
	Graph   graph.File  `toml:"graph"`
}

type payloadMeta struct {
	ID          string    `toml:"id"`
	Name        string    `toml:"name"`
	CatalogPath string    `toml:"catalog,omitempty"`
	OutputPath  string    `toml:"output,omitempty"`
	CreatedAt   time.Time `toml:"created_at"`
	UpdatedAt   time.Time `toml:"updated_at"`
}

// Encode serializes a session as TOML.
func Encode(s *Session) ([]byte, error) {
	if err := ValidateID(s.ID); err != nil {
		return nil, err
	}
	g := s.Graph
	if g == nil {
		g = graph.New()
	}
	p := payload{
		Session: payloadMeta{
			ID:          s.ID,
			Name:        s.Name,
			CatalogPath: s.CatalogPath,
			OutputPath:  s.OutputPath,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		},
		Graph: g.ToFile(),
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(p); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode session %s", s.ID)
	}
	return buf.Bytes(), nil
}

// Decode parses a payload produced by [Encode].
func Decode(data []byte) (*Session, error) {
	var p payload
	if _, err := toml.Decode(string(data), &p); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode session")
	}
	if err := ValidateID(p.Session.ID); err != nil {
		return nil, err
	}
	g, err := graph.FromFile(p.Graph)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:          p.Session.ID,
		Name:        p.Session.Name,
		CatalogPath: p.Session.CatalogPath,
		OutputPath:  p.Session.OutputPath,
		Graph:       g,
		CreatedAt:   p.Session.CreatedAt,
		UpdatedAt:   p.Session.UpdatedAt,
	}, nil
}
