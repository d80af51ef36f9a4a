// Package fetch implements the fetch orchestrator (C6) and response
// assembler (C7): the public surface of this module. Fetch drives one
// RequestPlan through the redirect state machine described by spec.md
// §4.5 — INIT -> SEND -> RECEIVING_HEADERS -> DECIDE ->
// (REDIRECT -> SEND) | DELIVER -> DONE, with REJECTED reachable from any
// state — and hands back a Response whose body is the decoded network
// stream.
package fetch

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nojima/go-fetch/body"
	"github.com/nojima/go-fetch/decode"
	"github.com/nojima/go-fetch/engine"
	"github.com/nojima/go-fetch/header"
	"github.com/nojima/go-fetch/signal"
	"github.com/nojima/go-fetch/validate"
	"github.com/pkg/errors"
)

// Options configures a Fetcher, mirroring the teacher's
// exchange.Options: a timeout applied per network round trip (spec.md §5
// draws no distinction here — external timeouts are meant to travel via
// signal, but a blanket per-hop timeout is the one liberty this module
// takes for callers who don't want to build their own context deadline),
// and a pluggable Engine for tests or alternate transports.
type Options struct {
	Timeout            time.Duration
	InsecureSkipVerify bool
	Engine             engine.Engine
}

// Fetcher is a configured, reusable entry point, the way a teacher
// exchange.Options+BuildHTTPClient pair is reused across requests.
type Fetcher struct {
	engine  engine.Engine
	timeout time.Duration
}

func New(opts Options) *Fetcher {
	eng := opts.Engine
	if eng == nil {
		eng = engine.NewHTTPEngine(engine.Options{InsecureSkipVerify: opts.InsecureSkipVerify})
	}
	return &Fetcher{engine: eng, timeout: opts.Timeout}
}

var defaultFetcher = New(Options{})

// Fetch performs input/init through the default Fetcher, the package-level
// convenience matching the host fetch(input, init) call spec.md §6 describes.
func Fetch(input interface{}, init *RequestInit) (*Response, error) {
	return defaultFetcher.Fetch(input, init)
}

// Fetch drives input/init to a Response, following, erroring on, or
// returning verbatim any redirect per the plan's redirect mode.
func (f *Fetcher) Fetch(input interface{}, init *RequestInit) (*Response, error) {
	req, err := resolveRequest(input, init)
	if err != nil {
		return nil, err
	}

	method, err := validate.Method(req.Method)
	if err != nil {
		return nil, err
	}
	redirectMode, err := validate.Redirect(req.Redirect)
	if err != nil {
		return nil, err
	}
	if err := validate.Scheme(req.URL); err != nil {
		return nil, err
	}
	if reason := signal.Reason(req.Signal); reason != nil {
		return nil, reason
	}

	bodyState, err := body.Extract(req.Body)
	if err != nil {
		return nil, errors.Wrap(err, "extracting request body")
	}

	p := &plan{
		url:          req.URL,
		method:       method,
		headers:      req.Headers.Clone(),
		body:         bodyState,
		originalBody: req.Body,
		redirectMode: redirectMode,
		signal:       req.Signal,
	}

	for {
		resp, next, err := f.sendOnce(p)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return resp, nil
		}
		p = next
	}
}

// sendOnce drives one hop through SEND -> RECEIVING_HEADERS -> DECIDE.
// It returns either a Response to deliver, or a new plan for the loop in
// Fetch to resend, never both.
func (f *Fetcher) sendOnce(p *plan) (*Response, *plan, error) {
	if reason := signal.Reason(p.signal); reason != nil {
		return nil, nil, reason
	}

	finalizeHeaders(p)

	ctx := (context.Context)(p.signal)
	if ctx == nil {
		ctx = context.Background()
	}
	var timeoutCancel context.CancelFunc
	if f.timeout > 0 {
		ctx, timeoutCancel = context.WithTimeout(ctx, f.timeout)
	}
	// timeoutCancel, once set, must be released along every return path.
	// For every path except "headers arrived and the caller gets a body
	// to read," that means releasing it right here before returning: per
	// spec.md §4.5, once RECEIVING_HEADERS completes, the per-hop
	// timeout must stop bounding anything — in particular it must not
	// keep ticking against however long the caller takes to read the
	// response body. So the one case that hands a body back defers
	// cancellation to that body's Close instead of to sendOnce
	// returning (see cancelOnClose below).
	release := timeoutCancel
	defer func() {
		if release != nil {
			release()
		}
	}()

	engineReq := &engine.Request{
		Method:        p.method,
		URL:           p.url,
		Headers:       p.headers.Pairs(),
		ContentLength: -1,
	}
	if p.body.Stream != nil {
		engineReq.Body = withAbort(p.body.Stream, p.signal)
	}
	if p.body.ContentLength != nil {
		engineReq.ContentLength = *p.body.ContentLength
	}

	engineResp, err := f.engine.RoundTrip(ctx, engineReq)
	if err != nil {
		if reason := signal.Reason(p.signal); reason != nil {
			return nil, nil, reason
		}
		return nil, nil, errors.Wrap(err, "sending HTTP request")
	}

	respHeaders := header.FromPairs(engineResp.Headers)

	if isRedirectStatus(engineResp.StatusCode) {
		location := respHeaders.Get("Location")
		if location != "" {
			next, err := f.decideRedirect(p, engineResp, respHeaders, location)
			if err != nil {
				drain(engineResp.Body)
				return nil, nil, err
			}
			if next != nil {
				drain(engineResp.Body)
				return nil, next, nil
			}
			// Manual mode: deliver the 3xx verbatim below, with
			// Location rewritten to its absolute form.
		}
	}

	resp := assembleResponse(p, engineResp, respHeaders)
	if timeoutCancel != nil && resp.Body != nil {
		resp.Body = cancelOnClose(resp.Body, timeoutCancel)
		release = nil // the body now owns releasing the timeout context
	}
	return resp, nil, nil
}

// cancelOnClose wraps body so that closing it, not the RoundTrip call
// returning, is what releases the per-hop timeout context. net/http's
// own Transport follows the same pattern internally: a request context
// stays live for as long as its response body is open, not just long
// enough to receive headers.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func cancelOnClose(body io.ReadCloser, cancel context.CancelFunc) io.ReadCloser {
	return &cancelOnCloseBody{ReadCloser: body, cancel: cancel}
}

func (b *cancelOnCloseBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// decideRedirect consults the plan's redirect mode. It returns a non-nil
// plan when the hop should be resent (follow mode), nil with no error
// when the 3xx should just be delivered (manual mode, after rewriting
// Location to its absolute form), or an error (error mode, or any
// follow-mode policy violation).
func (f *Fetcher) decideRedirect(p *plan, er *engine.Response, headers *header.Headers, location string) (*plan, error) {
	locationURL, err := resolveLocation(p.url, location)
	if err != nil {
		return nil, err
	}

	switch p.redirectMode {
	case validate.RedirectError:
		return nil, &RedirectError{Message: "URI requested responds with a redirect, redirect mode is set to error"}
	case validate.RedirectManual:
		headers.Set("Location", locationURL.String())
		return nil, nil
	default: // follow
		return followRedirect(p, er.StatusCode, locationURL)
	}
}

// finalizeHeaders applies spec.md §4.5's "Request header finalization"
// step, run once per hop just before SEND.
func finalizeHeaders(p *plan) {
	if p.headers.Get("Accept") == "" {
		p.headers.Set("Accept", "*/*")
	}
	if p.body.ContentType != "" && p.headers.Get("Content-Type") == "" {
		p.headers.Set("Content-Type", p.body.ContentType)
	}
	if p.body.Stream == nil && (p.method == "POST" || p.method == "PUT") {
		p.headers.Set("Content-Length", "0")
	} else if p.body.Stream != nil && p.body.ContentLength != nil {
		p.headers.Set("Content-Length", strconv.FormatInt(*p.body.ContentLength, 10))
	}
}

// assembleResponse is the response assembler (C7): it builds the final
// Response, forcing url/type/redirected, and wires the decoded body
// stream per spec.md §4.5's "Response body handling."
func assembleResponse(p *plan, er *engine.Response, headers *header.Headers) *Response {
	respBody := er.Body

	noBody := p.method == "HEAD" || er.StatusCode == 204 || er.StatusCode == 304
	if noBody {
		if er.Body != nil {
			er.Body.Close()
		}
		respBody = nil
	} else {
		encoding := strings.ToLower(headers.Get("Content-Encoding"))
		if encoding != "" {
			headers.Set("Content-Encoding", encoding)
			respBody = decode.NewDecoder(encoding, er.Body)
		}
	}

	respBody = withAbort(respBody, p.signal)

	return &Response{
		StatusCode: er.StatusCode,
		Status:     er.Status,
		Headers:    headers,
		Body:       respBody,
		URL:        p.url.String(),
		Redirected: p.redirectCount > 0,
		Type:       ResponseDefault,
	}
}

func drain(r interface{ Close() error }) {
	if r != nil {
		r.Close()
	}
}
