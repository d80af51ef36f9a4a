package fetch

import (
	"net/url"

	"github.com/nojima/go-fetch/body"
	"github.com/nojima/go-fetch/header"
	"github.com/nojima/go-fetch/signal"
	"github.com/nojima/go-fetch/validate"
)

// plan is spec.md §3's RequestPlan: the orchestrator's mutable state for
// one fetch call across however many redirect hops it takes.
type plan struct {
	url           *url.URL
	method        string
	headers       *header.Headers
	body          body.State
	originalBody  interface{}
	redirectMode  validate.RedirectMode
	signal        signal.Source
	redirectCount int
}
