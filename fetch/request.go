package fetch

import (
	"net/url"

	"github.com/nojima/go-fetch/signal"
)

// Request is the conceptual Request type spec.md §1 assumes the host
// provides: the fields fetch actually reads are method, url, headers,
// body, signal, and redirect.
type Request struct {
	Method   string
	URL      *url.URL
	Headers  *Headers
	Body     interface{} // any value body.Extract classifies; see package body
	Signal   signal.Source
	Redirect string // "", "follow", "manual", or "error"
}

// RequestInit is the optional second argument to Fetch, spec.md §6's
// "init." Every field overrides the corresponding Request field
// independently; fields left at their zero value inherit from input.
type RequestInit struct {
	Method  string
	Headers interface{} // any HeadersFrom-compatible shape
	Body    interface{}
	Signal  signal.Source
	// Redirect is the follow|manual|error policy.
	Redirect string
	// Duplex is accepted and ignored, matching spec.md §6: it exists so
	// callers that also target a browser-style fetch compile unchanged.
	Duplex string
}

// resolveRequest implements spec.md §6's defaulting chain: input can be
// a URL string, a *url.URL, or a *Request; init overrides input
// field-by-field.
func resolveRequest(input interface{}, init *RequestInit) (*Request, error) {
	base, err := coerceToRequest(input)
	if err != nil {
		return nil, err
	}
	if init == nil {
		return base, nil
	}

	merged := *base
	if init.Method != "" {
		merged.Method = init.Method
	}
	if init.Headers != nil {
		initHeaders, err := HeadersFrom(init.Headers)
		if err != nil {
			return nil, err
		}
		merged.Headers = mergeHeaders(base.Headers, initHeaders)
	}
	if init.Body != nil {
		merged.Body = init.Body
	}
	if init.Signal != nil {
		merged.Signal = init.Signal
	}
	if init.Redirect != "" {
		merged.Redirect = init.Redirect
	}
	return &merged, nil
}

func coerceToRequest(input interface{}) (*Request, error) {
	switch v := input.(type) {
	case *Request:
		clone := *v
		if clone.Headers == nil {
			clone.Headers = NewHeaders()
		}
		return &clone, nil
	case string:
		u, err := parseAbsoluteURL(v)
		if err != nil {
			return nil, err
		}
		return &Request{URL: u, Headers: NewHeaders()}, nil
	case *url.URL:
		return &Request{URL: v, Headers: NewHeaders()}, nil
	default:
		return nil, &TypeError{Message: "fetch: input must be a URL string, *url.URL, or *Request"}
	}
}

// parseAbsoluteURL rejects protocol-relative and otherwise non-absolute
// URL strings the way spec.md §8 scenario 1 expects
// (fetch("//example.com/") rejects with "Invalid URL").
func parseAbsoluteURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, &TypeError{Message: "Invalid URL"}
	}
	return u, nil
}
