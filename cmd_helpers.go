package fetchcli

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/nojima/go-fetch/header"
)

// buildDisplayRequest builds a throwaway *http.Request purely so
// output.Printer's PrintRequestLine (which renders off net/http types
// for its terminal-display convenience) has something to print; it is
// never sent anywhere.
func buildDisplayRequest(method, rawURL string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = "GET"
	}
	return &http.Request{Method: method, URL: u, Proto: httpProto}, nil
}

func toHTTPHeader(h *header.Headers) http.Header {
	out := make(http.Header)
	for _, name := range h.Names() {
		out[name] = h.Values(name)
	}
	return out
}

func parseDownloadURL(rawURL string) (*url.URL, error) {
	return url.Parse(rawURL)
}

func parseContentLength(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
