// Package observability lets the binary observe exports, session traffic and
// API requests without the library packages depending on a metrics backend.
//
// Hooks default to no-ops. The CLI registers logging hooks at startup:
//
//	observability.SetExportHooks(logHooks{logger})
//
// and the engine boundaries report events:
//
//	observability.Export().OnExportComplete(ctx, path, records, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives document export events.
type ExportHooks interface {
	OnExportStart(ctx context.Context, path string, nodes int)
	// OnExportComplete reports the number of records written, or err.
	OnExportComplete(ctx context.Context, path string, records int, duration time.Duration, err error)
}

// =============================================================================
// Session Hooks
// =============================================================================

// SessionHooks receives session store events. Op is "get", "set", "delete"
// or "list"; backend is "file", "redis" or "mongo".
type SessionHooks interface {
	OnSessionOp(ctx context.Context, backend, op, id string, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server.
type HTTPHooks interface {
	// OnRequest records an incoming request before routing.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status and handling time. Route is
	// the matched pattern, or the path when nothing matched.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportStart(context.Context, string, int)                           {}
func (NoopExportHooks) OnExportComplete(context.Context, string, int, time.Duration, error) {}

// NoopSessionHooks is a no-op implementation of SessionHooks.
type NoopSessionHooks struct{}

func (NoopSessionHooks) OnSessionOp(context.Context, string, string, string, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	exportHooks  ExportHooks  = NoopExportHooks{}
	sessionHooks SessionHooks = NoopSessionHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetExportHooks registers custom export hooks. Nil is ignored.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetSessionHooks registers custom session hooks. Nil is ignored.
func SetSessionHooks(h SessionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sessionHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Session returns the registered session hooks.
func Session() SessionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sessionHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	exportHooks = NoopExportHooks{}
	sessionHooks = NoopSessionHooks{}
	httpHooks = NoopHTTPHooks{}
}
