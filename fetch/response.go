package fetch

import "io"

// ResponseType mirrors spec.md §3's Response.type values. This module
// only ever produces "default" — cors/opaque/opaqueredirect are
// browser-security concepts with no meaning for a server-side client —
// but the type exists so callers that branch on it compile unchanged.
type ResponseType string

const (
	ResponseDefault        ResponseType = "default"
	ResponseBasic          ResponseType = "basic"
	ResponseError          ResponseType = "error"
	ResponseOpaqueRedirect ResponseType = "opaqueredirect"
)

// Response is the conceptual Response type spec.md §3/§4.6 describes,
// with url, type, and redirected forced by the orchestrator (C6) rather
// than left for the caller to set.
type Response struct {
	StatusCode int
	Status     string
	Headers    *Headers
	Body       io.ReadCloser // nil for HEAD, 204, and 304 responses

	URL        string
	Redirected bool
	Type       ResponseType
}

// Text reads Body to completion and returns it as a string. Mirrors the
// host Response.text() convenience method; spec.md §7.4 notes decoding
// errors surface here, not from Fetch itself, since the orchestrator
// never pre-drains the body.
func (r *Response) Text() (string, error) {
	data, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// bytes reads Body to completion. A "slightly invalid gzip" body (a
// truncated trailer after the payload decoded in full) is already
// resolved by decode.gzipReader, which never reads the trailer in the
// first place and so never raises an error for it; anything that still
// reaches here as io.ErrUnexpectedEOF is a genuine transport-level
// truncation (e.g. a short Content-Length) and must propagate per
// spec.md §7.3, not be mistaken for success.
func (r *Response) bytes() ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
