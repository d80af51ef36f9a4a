package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nojima/go-fetch/body"
	"github.com/pkg/errors"
)

const maxRedirects = 20

func isRedirectStatus(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

// resolveLocation resolves a Location header value against the URL the
// response came from, spec.md §4.5's "new URL(location, currentURL)".
func resolveLocation(current *url.URL, location string) (*url.URL, error) {
	u, err := current.Parse(location)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving redirect Location %q", location)
	}
	return u, nil
}

// followRedirect builds the plan for the next hop per spec.md §4.5's
// redirect-handling rules: counter/scheme checks, then method/body
// rewriting.
func followRedirect(p *plan, status int, location *url.URL) (*plan, error) {
	count := p.redirectCount + 1
	if count > maxRedirects {
		return nil, &RedirectError{Message: fmt.Sprintf("maximum redirect reached at: %s", location.String())}
	}

	scheme := strings.ToLower(location.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, &RedirectError{Message: "URL scheme must be a HTTP(S) scheme"}
	}

	next := &plan{
		url:           location,
		method:        p.method,
		headers:       p.headers.Clone(),
		redirectMode:  p.redirectMode,
		signal:        p.signal,
		originalBody:  p.originalBody,
		redirectCount: count,
	}

	switch {
	case status == 303 || ((status == 301 || status == 302) && p.method == "POST"):
		next.method = "GET"
		next.body = body.State{}
		next.headers.Delete("Content-Length")

	case p.body.Stream != nil && p.body.ContentLength == nil:
		return nil, &RedirectError{Message: "Cannot follow redirect with a streamed body"}

	default:
		state, err := body.Extract(p.originalBody)
		if err != nil {
			return nil, errors.Wrap(err, "re-extracting request body for redirect")
		}
		next.body = state
	}

	return next, nil
}
