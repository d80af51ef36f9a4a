package engine

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/pkg/errors"
)

// HTTPEngine is the one concrete Engine this module ships: an adapter
// over net/http, the same way the teacher's exchange.BuildHTTPClient
// wraps http.Transport. Redirects are never followed here — the
// orchestrator (C6) is the one place spec.md wants redirect policy
// decided, so CheckRedirect always returns http.ErrUseLastResponse and
// every 3xx comes back to the caller as an ordinary Response.
type HTTPEngine struct {
	client *http.Client
}

// Options configures the underlying transport.
type Options struct {
	// InsecureSkipVerify disables TLS certificate verification. Mirrors
	// the teacher's exchange.Options.SkipVerify.
	InsecureSkipVerify bool
	// Transport overrides the underlying http.RoundTripper entirely.
	Transport http.RoundTripper
}

func NewHTTPEngine(opts Options) *HTTPEngine {
	transport := opts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		t.TLSClientConfig.InsecureSkipVerify = opts.InsecureSkipVerify
		// Content decoding belongs to the orchestrator (C3 via fetch), which
		// also keeps the Content-Encoding header; net/http's transparent
		// gzip would strip that header and decode a second time.
		t.DisableCompression = true
		transport = t
	}

	return &HTTPEngine{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (e *HTTPEngine) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), req.Body)
	if err != nil {
		return nil, errors.Wrap(err, "building HTTP request")
	}
	for i := 0; i+1 < len(req.Headers); i += 2 {
		httpReq.Header.Add(req.Headers[i], req.Headers[i+1])
	}
	if req.ContentLength >= 0 {
		httpReq.ContentLength = req.ContentLength
	}
	// The Host header, if the caller set one, must also drive
	// http.Request.Host or net/http silently ignores it.
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "sending HTTP request")
	}

	var headerPairs []string
	for name, values := range resp.Header {
		for _, v := range values {
			headerPairs = append(headerPairs, name, v)
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    headerPairs,
		Body:       resp.Body,
	}, nil
}
