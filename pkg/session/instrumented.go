package session

import (
	"context"
	"time"

	"github.com/matzehuels/tuigraph/pkg/observability"
)

// Instrument wraps store so every operation is reported to the registered
// session hooks under the given backend name.
func Instrument(store Store, backend string) Store {
	return &instrumented{Store: store, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) report(ctx context.Context, op, id string, start time.Time, err error) {
	observability.Session().OnSessionOp(ctx, s.backend, op, id, time.Since(start), err)
}

func (s *instrumented) Get(ctx context.Context, id string) (*Session, error) {
	start := time.Now()
	sess, err := s.Store.Get(ctx, id)
	s.report(ctx, "get", id, start, err)
	return sess, err
}

func (s *instrumented) Set(ctx context.Context, sess *Session) error {
	start := time.Now()
	err := s.Store.Set(ctx, sess)
	s.report(ctx, "set", sess.ID, start, err)
	return err
}

func (s *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.Store.Delete(ctx, id)
	s.report(ctx, "delete", id, start, err)
	return err
}

func (s *instrumented) List(ctx context.Context) ([]Summary, error) {
	start := time.Now()
	out, err := s.Store.List(ctx)
	s.report(ctx, "list", "", start, err)
	return out, err
}
