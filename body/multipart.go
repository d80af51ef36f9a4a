package body

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

const boundaryPrefix = "formdata-"

// NewBoundary generates a multipart boundary of the form
// "formdata-<16 lowercase hex chars>" from 8 bytes of cryptographically
// strong randomness, matching spec.md §4.2 and the wire shape tests
// depend on (`formdata-[0-9a-f]{16}`).
func NewBoundary() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generating multipart boundary")
	}
	return boundaryPrefix + hex.EncodeToString(raw), nil
}

func extractFormData(fd FormDataEntries) (State, error) {
	boundary, err := NewBoundary()
	if err != nil {
		return State{}, err
	}
	entries := fd.Entries()
	total := multipartLength(entries, boundary)
	return State{
		Stream:        newMultipartReader(entries, boundary),
		ContentLength: length(total),
		ContentType:   fmt.Sprintf("multipart/form-data; boundary=%s", boundary),
	}, nil
}

// multipartLength walks entries summing header length + value length + the
// trailing CRLF per entry, then adds the footer. It never touches a blob's
// bytes, only its advertised Size(), so it stays as cheap as the rest of
// Extract.
func multipartLength(entries []FormValue, boundary string) int64 {
	var total int64
	for _, e := range entries {
		total += int64(len(entryHeader(e, boundary)))
		if e.File != nil {
			total += e.File.Size()
		} else {
			total += int64(len(e.Value))
		}
		total += 2 // CRLF following the value
	}
	total += int64(len(footer(boundary)))
	return total
}

// entryHeader builds the header block preceding one entry's value. Field
// names and filenames are not escaped — spec.md §4.2 leaves that to the
// caller.
func entryHeader(e FormValue, boundary string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "--%s\r\nContent-Disposition: form-data; name=\"%s\"", boundary, e.Name)
	if e.File != nil {
		filename := "blob"
		if nb, ok := e.File.(namedBlob); ok && nb.Name() != "" {
			filename = nb.Name()
		}
		contentType := e.File.Type()
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		fmt.Fprintf(&b, "; filename=\"%s\"\r\nContent-Type: %s", filename, contentType)
	}
	b.WriteString("\r\n\r\n")
	return b.Bytes()
}

func footer(boundary string) string {
	return "--" + boundary + "--\r\n\r\n"
}

// newMultipartReader streams entries lazily: the header for entry N+1 is
// not built, and entry N+1's blob is not opened, until the consumer has
// drained entry N. This is the "generator yielding header-bytes /
// blob-stream / CRLF triples per entry" design spec.md §9 calls for,
// implemented with io.Pipe rather than buffering the whole body.
func newMultipartReader(entries []FormValue, boundary string) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeMultipart(pw, entries, boundary))
	}()
	return pr
}

func writeMultipart(w io.Writer, entries []FormValue, boundary string) error {
	for _, e := range entries {
		if _, err := w.Write(entryHeader(e, boundary)); err != nil {
			return err
		}
		if e.File != nil {
			stream, err := e.File.Stream()
			if err != nil {
				return errors.Wrapf(err, "opening blob stream for field %q", e.Name)
			}
			_, copyErr := io.Copy(w, stream)
			stream.Close()
			if copyErr != nil {
				return errors.Wrapf(copyErr, "streaming blob for field %q", e.Name)
			}
		} else if _, err := io.WriteString(w, e.Value); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, footer(boundary))
	return err
}
