package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
	"github.com/matzehuels/tuigraph/pkg/graph"
	"github.com/matzehuels/tuigraph/pkg/observability"
	"github.com/matzehuels/tuigraph/pkg/value"
)

func sampleGraph() *graph.Graph {
	g := graph.New()
	n := graph.NewNodeInstance(1, "cstr", "lane1.t1")
	n.SetValue("pos", value.Table{"x": value.Float(1), "y": value.Float(2)})
	_ = g.AddNode(n)
	_ = g.AddNode(graph.NewNodeInstance(2, "sensor", "lane1.t1_sensor"))
	g.AddEdge(1, 2, "lane1_t1_out")
	return g
}

func TestEncodeDecode(t *testing.T) {
	sess := New("lane 1", sampleGraph())
	sess.CatalogPath = "catalog.toml"
	sess.OutputPath = "out.toml"

	data, err := Encode(sess)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, data)
	}
	if diff := cmp.Diff(sess, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeRejectsBadID(t *testing.T) {
	sess := New("x", nil)
	sess.ID = "../escape"
	if _, err := Encode(sess); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Encode error = %v, want INVALID_INPUT", err)
	}
}

func TestSummary(t *testing.T) {
	sum := New("s", sampleGraph()).Summary()
	if sum.Nodes != 2 || sum.Edges != 1 || sum.Name != "s" {
		t.Errorf("Summary = %+v", sum)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "sessions")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if store.Path() != dir {
		t.Errorf("Path = %q, want %q", store.Path(), dir)
	}

	older := New("older", sampleGraph())
	older.UpdatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := New("newer", nil)
	newer.UpdatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, s := range []*Session{older, newer} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	got, err := store.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(older, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	// A stray file must not break listing.
	if err := os.WriteFile(filepath.Join(dir, "junk.toml"), []byte("not = [valid"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Errorf("List = %+v, want newer then older", list)
	}

	if err := store.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, older.ID); !errs.Is(err, errs.ErrCodeSessionNotFound) {
		t.Errorf("Get after delete error = %v, want SESSION_NOT_FOUND", err)
	}
	if err := store.Delete(ctx, older.ID); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}

func TestFileStoreInvalidID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"", "../x", "abc"} {
		if _, err := store.Get(context.Background(), id); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Get(%q) error = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestDefaultDirXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "tuigraph", "sessions"); dir != want {
		t.Errorf("DefaultDir = %q, want %q", dir, want)
	}
}

// The network backends run only when a server is provided.

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TUIGRAPH_TEST_REDIS")
	if addr == "" {
		t.Skip("TUIGRAPH_TEST_REDIS not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Prefix: "tuigraph-test:"})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TUIGRAPH_TEST_MONGO")
	if uri == "" {
		t.Skip("TUIGRAPH_TEST_MONGO not set")
	}
	ctx := context.Background()
	store, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "tuigraph_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	exerciseStore(t, store)
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	sess := New("integration", sampleGraph())
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set: %v", err)
	}
	defer store.Delete(ctx, sess.ID)

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Graph.Nodes) != 2 {
		t.Errorf("Get returned %d nodes, want 2", len(got.Graph.Nodes))
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, s := range list {
		found = found || s.ID == sess.ID
	}
	if !found {
		t.Error("List does not include the stored session")
	}
}

type recordingHooks struct {
	observability.NoopSessionHooks
	ops []string
}

func (r *recordingHooks) OnSessionOp(_ context.Context, backend, op, _ string, _ time.Duration, _ error) {
	r.ops = append(r.ops, backend+":"+op)
}

func TestInstrument(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetSessionHooks(hooks)
	defer observability.Reset()

	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := Instrument(fs, "file")
	ctx := context.Background()
	sess := New("x", nil)
	_ = store.Set(ctx, sess)
	_, _ = store.Get(ctx, sess.ID)
	_, _ = store.List(ctx)
	_ = store.Delete(ctx, sess.ID)

	want := []string{"file:set", "file:get", "file:list", "file:delete"}
	if diff := cmp.Diff(want, hooks.ops); diff != "" {
		t.Errorf("hook calls mismatch (-want +got):\n%s", diff)
	}
}
