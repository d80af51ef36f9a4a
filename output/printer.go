package output

import (
	"io"
	"net/http"
)

// Printer renders one HTTP exchange to a terminal or a file. The pieces
// are split out (status line, request line, header block, body) so a
// caller can mix and match which parts to print per the --print flag.
type Printer interface {
	PrintStatusLine(proto, status string, statusCode int) error
	PrintRequestLine(req *http.Request) error
	PrintHeader(header http.Header) error
	PrintBody(body io.Reader, contentType string) error
}
