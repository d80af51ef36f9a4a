// Package validate implements the URL/method validator (C5): rejecting
// non-HTTP schemes, normalizing method casing, and forbidding
// CONNECT/TRACE/TRACK.
package validate

import (
	"fmt"
	"net/url"
	"strings"
)

// RedirectMode is the policy for handling 3xx responses.
type RedirectMode string

const (
	RedirectFollow RedirectMode = "follow"
	RedirectManual RedirectMode = "manual"
	RedirectError  RedirectMode = "error"
)

// TypeError mirrors the stable, test-depended-on error strings spec.md §6
// lists. fetch distinguishes these from other failures via errors.As.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string { return e.Message }

var forbiddenMethods = map[string]bool{
	"CONNECT": true,
	"TRACE":   true,
	"TRACK":   true,
}

// Scheme checks that u's scheme is http or https, returning the stable
// error string from spec.md §4.5/§6 otherwise.
func Scheme(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return &TypeError{Message: fmt.Sprintf(`URL scheme "%s:" is not supported.`, scheme)}
	}
	return nil
}

// Method normalizes an HTTP method to canonical uppercase, defaulting to
// GET when empty, and rejects CONNECT/TRACE/TRACK.
func Method(method string) (string, error) {
	if method == "" {
		return "GET", nil
	}
	upper := strings.ToUpper(method)
	if forbiddenMethods[upper] {
		return "", &TypeError{Message: fmt.Sprintf("Failed to construct 'Request': '%s' HTTP method is unsupported.", upper)}
	}
	return upper, nil
}

// Redirect validates and defaults a redirect mode string.
func Redirect(mode string) (RedirectMode, error) {
	if mode == "" {
		return RedirectFollow, nil
	}
	switch RedirectMode(mode) {
	case RedirectFollow, RedirectManual, RedirectError:
		return RedirectMode(mode), nil
	default:
		return "", &TypeError{Message: fmt.Sprintf(
			"Request constructor: %s is not an accepted type. Expected one of follow, manual, error.", mode)}
	}
}
