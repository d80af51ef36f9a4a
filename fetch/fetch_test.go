package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestFetch_RejectsProtocolRelativeURL(t *testing.T) {
	_, err := Fetch("//example.com/", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got != "Invalid URL" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestFetch_RejectsUnsupportedScheme(t *testing.T) {
	_, err := Fetch("ftp://example.com/", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got != `URL scheme "ftp:" is not supported.` {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestFetch_302RewritesPOSTToGETWithEmptyBody(t *testing.T) {
	var inspected struct {
		method string
		body   string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/inspect", http.StatusFound)
		case "/inspect":
			body, _ := ioutil.ReadAll(r.Body)
			inspected.method = r.Method
			inspected.body = string(body)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	resp, err := Fetch(server.URL+"/redirect", &RequestInit{Method: "POST", Body: "a=1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if inspected.method != "GET" {
		t.Errorf("expected GET after 302 of a POST, got %q", inspected.method)
	}
	if inspected.body != "" {
		t.Errorf("expected empty body after 302 of a POST, got %q", inspected.body)
	}
	if !resp.Redirected {
		t.Error("expected Redirected to be true")
	}
}

func TestFetch_307PreservesMethodAndBody(t *testing.T) {
	var inspected struct {
		method string
		body   string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/inspect", http.StatusTemporaryRedirect)
		case "/inspect":
			body, _ := ioutil.ReadAll(r.Body)
			inspected.method = r.Method
			inspected.body = string(body)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	resp, err := Fetch(server.URL+"/redirect", &RequestInit{Method: "POST", Body: "a=1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if inspected.method != "POST" {
		t.Errorf("expected POST to be preserved across 307, got %q", inspected.method)
	}
	if inspected.body != "a=1" {
		t.Errorf("expected body to be preserved across 307, got %q", inspected.body)
	}
}

func TestFetch_GzipDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("hello world"))
		gz.Close()
	}))
	defer server.Close()

	resp, err := Fetch(server.URL+"/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, err := resp.Text()
	if err != nil {
		t.Fatalf("unexpected error reading body: %v", err)
	}
	if text != "hello world" {
		t.Errorf("unexpected decoded body: %q", text)
	}
	if got := resp.Headers.Get("Content-Encoding"); got != "gzip" {
		t.Errorf("unexpected Content-Encoding: %q", got)
	}
}

var multipartContentTypeRE = regexp.MustCompile(`^multipart/form-data; boundary=formdata-[0-9a-f]{16}$`)

func TestFetch_MultipartFormData(t *testing.T) {
	var inspected struct {
		contentType   string
		contentLength string
		body          string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		inspected.contentType = r.Header.Get("Content-Type")
		inspected.contentLength = r.Header.Get("Content-Length")
		inspected.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fd := NewFormData()
	fd.Append("a", "1")

	resp, err := Fetch(server.URL+"/", &RequestInit{Method: "POST", Body: fd})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if !multipartContentTypeRE.MatchString(inspected.contentType) {
		t.Errorf("unexpected content type: %q", inspected.contentType)
	}
	if inspected.contentLength != "109" {
		t.Errorf("expected content length 109, got %q", inspected.contentLength)
	}
	if !strContains(inspected.body, `name="a"`) || !strContains(inspected.body, "\r\n\r\n1\r\n") {
		t.Errorf("expected body to echo a=1, got %q", inspected.body)
	}
}

func strContains(haystack, needle string) bool {
	return regexp.MustCompile(regexp.QuoteMeta(needle)).MatchString(haystack)
}

func TestFetch_SignalAbortedBeforeCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(&Request{
		Method: "GET",
		URL:    mustAbsoluteURL(t, "http://example.com/"),
		Signal: ctx,
	}, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestFetch_MaxRedirectsExceeded(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/", http.StatusFound)
	}))
	defer server.Close()

	_, err := Fetch(server.URL+"/", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); !regexp.MustCompile("^maximum redirect reached at: ").MatchString(got) {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestFetch_ManualRedirectReturnsVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	}))
	defer server.Close()

	resp, err := Fetch(server.URL+"/", &RequestInit{Redirect: "manual"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("expected 302 to be returned verbatim, got %d", resp.StatusCode)
	}
	if resp.Redirected {
		t.Error("expected Redirected to be false for manual mode")
	}
	location := resp.Headers.Get("Location")
	if location == "" || location[0] == '/' {
		t.Errorf("expected Location to be rewritten to an absolute URL, got %q", location)
	}
}

func TestFetch_ErrorRedirectMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/target", http.StatusFound)
	}))
	defer server.Close()

	_, err := Fetch(server.URL+"/", &RequestInit{Redirect: "error"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got != "URI requested responds with a redirect, redirect mode is set to error" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestFetch_CannotFollowRedirectWithStreamedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 307 preserves method and body, which is exactly the case that
		// needs to re-send the body on the next hop.
		http.Redirect(w, r, "/target", http.StatusTemporaryRedirect)
	}))
	defer server.Close()

	// A bare io.Reader has no known length, so body.Extract leaves
	// ContentLength nil: an un-replayable "streamed" body.
	_, err := Fetch(server.URL+"/", &RequestInit{Method: "PUT", Body: strings.NewReader("streamed")})
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got != "Cannot follow redirect with a streamed body" {
		t.Errorf("unexpected error message: %q", got)
	}
}

func TestFetch_HEADHasNoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := Fetch(server.URL+"/", &RequestInit{Method: "HEAD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Body != nil {
		t.Error("expected nil body for HEAD")
	}
}

func TestFetch_204And304HaveNoBody(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotModified} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		resp, err := Fetch(server.URL+"/", nil)
		server.Close()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Body != nil {
			t.Errorf("expected nil body for status %d", status)
		}
	}
}

func TestFetch_TimeoutAppliesPerHop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := New(Options{Timeout: 5 * time.Millisecond})
	_, err := fetcher.Fetch(server.URL+"/", nil)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}

// The per-hop timeout must bound only SEND..RECEIVING_HEADERS, not the
// time the caller spends reading the body afterward. A fast response
// through a timeout-configured Fetcher must still deliver a fully
// readable body, even well after the timeout duration has elapsed.
func TestFetch_TimeoutDoesNotApplyToBodyRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "fast response body")
	}))
	defer server.Close()

	fetcher := New(Options{Timeout: 20 * time.Millisecond})
	resp, err := fetcher.Fetch(server.URL+"/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Outlive the per-hop timeout before reading the body.
	time.Sleep(50 * time.Millisecond)

	text, err := resp.Text()
	if err != nil {
		t.Fatalf("unexpected error reading body after timeout elapsed: %v", err)
	}
	if text != "fast response body" {
		t.Errorf("unexpected body: %q", text)
	}
}

// A response whose declared Content-Length promises more than the server
// actually sends before closing the connection must surface as an error,
// not as a silently truncated success.
func TestFetch_TruncatedBodyPropagatesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "short")

		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("response writer does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Fatalf("unexpected error hijacking connection: %v", err)
		}
		conn.Close()
	}))
	defer server.Close()

	resp, err := Fetch(server.URL+"/", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := resp.Text(); err == nil {
		t.Fatal("expected an error reading a truncated body")
	}
}

func mustAbsoluteURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := parseAbsoluteURL(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return u
}

func TestFetch_InitHeadersWinOnConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.Header.Get("X-Foo"))
	}))
	defer server.Close()

	req := &Request{
		Method:  "GET",
		URL:     mustAbsoluteURL(t, server.URL+"/"),
		Headers: NewHeaders(),
	}
	req.Headers.Set("X-Foo", "from-request")

	resp, err := Fetch(req, &RequestInit{Headers: map[string]string{"X-Foo": "from-init"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, _ := resp.Text()
	if text != "from-init" {
		t.Errorf("expected init headers to win, got %q", text)
	}
}
