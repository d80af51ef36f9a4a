package fetch

import "github.com/nojima/go-fetch/validate"

// TypeError is spec.md §7.1's validation error kind: invalid URL,
// unsupported scheme/method, unknown redirect mode, wrong signal shape.
// Reported synchronously, before any network activity.
type TypeError = validate.TypeError

// RedirectError is spec.md §7.2's redirect-policy error kind: error-mode
// on a 3xx, max redirects exceeded, a non-HTTP redirect target, or a
// streamed body that can't be replayed across a hop.
type RedirectError struct {
	Message string
}

func (e *RedirectError) Error() string { return e.Message }
