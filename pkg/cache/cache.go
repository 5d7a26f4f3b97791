// Package cache stores rendered graph previews keyed by their input.
//
// Graphviz layout is the slowest step of a preview, and a DOT document fully
// determines its rendering, so previews are cached under a hash of the DOT
// text and the output format:
//
//	key := cache.RenderKey("svg", dot)
//	svg, err := cache.GetOrRender(ctx, c, key, ttl, func() ([]byte, error) {
//	    return nodelink.RenderSVG(ctx, dot)
//	})
//
// [FileCache] backs the CLI and the API server; [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetOrRender returns the cached entry for key, or calls render and stores
// its result. Cache read and write failures fall through to render; only
// render errors are returned.
func GetOrRender(ctx context.Context, c Cache, key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, nil
	}
	data, err := render()
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, key, data, ttl)
	return data, nil
}

// NullCache stores nothing. Every Get misses, so GetOrRender always renders.
type NullCache struct{}

// NewNullCache returns the cache used when caching is disabled.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }
