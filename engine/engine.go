// Package engine defines the abstract HTTP engine seam spec.md §1 treats
// as an external collaborator: socket connection pooling, TLS, and
// HTTP/1.1 framing are someone else's problem. The fetch orchestrator
// (C6) only ever talks to the Engine interface below.
package engine

import (
	"context"
	"io"
	"net/url"
)

// Request is what the orchestrator hands the engine: a method, an
// absolute URL, a flat raw-header-pair list, and a body stream. Headers
// are flat pairs (not a Headers container) because that is the shape
// spec.md §4.4 says the engine exposes at its boundary.
type Request struct {
	Method        string
	URL           *url.URL
	Headers       []string
	Body          io.ReadCloser
	ContentLength int64 // -1 means unknown; frame as chunked
}

// Response is what the engine hands back: status, flat raw-header pairs,
// and a lazy body stream.
type Response struct {
	StatusCode int
	Status     string
	Headers    []string
	Body       io.ReadCloser
}

// Engine performs one request/response exchange. Implementations own
// connection pooling and are assumed safe for concurrent use, per their
// own contract (spec.md §5's "Shared resources").
type Engine interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}
