package body

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Extract classifies input and returns a uniform State. It is pure: it
// never performs I/O, it only builds the lazy stream that will perform
// I/O once consumed.
//
// Classification is by capability probe, in the fixed order spec.md §4.1
// lays out — first match wins:
//
//  1. string
//  2. url-form (URLForm)
//  3. blob (Blob)
//  4. contiguous byte buffer ([]byte or ByteView)
//  5. standards readable byte stream (ReadableStream)
//  6. form-data entries (FormDataEntries)
//  7. pre-assembled multipart stream (MultipartStream)
//  8. native readable byte stream (io.Reader)
//  9. iterable of bytes (ChunkIterator)
//  10. anything else, stringified
func Extract(input interface{}) (State, error) {
	if input == nil {
		return State{}, nil
	}

	if s, ok := input.(string); ok {
		return extractText(s), nil
	}
	if uf, ok := input.(URLForm); ok {
		return extractURLForm(uf), nil
	}
	if b, ok := input.(Blob); ok {
		return extractBlob(b), nil
	}
	switch v := input.(type) {
	case []byte:
		return extractBytes(v), nil
	case ByteView:
		return extractBytes(v.bytes()), nil
	}
	if rs, ok := input.(ReadableStream); ok {
		return State{Stream: io.NopCloser(rs)}, nil
	}
	if fd, ok := input.(FormDataEntries); ok {
		return extractFormData(fd)
	}
	if ms, ok := input.(MultipartStream); ok {
		return extractMultipartStream(ms), nil
	}
	if r, ok := input.(io.Reader); ok {
		return extractNativeStream(r), nil
	}
	if it, ok := input.(ChunkIterator); ok {
		return extractIterable(it), nil
	}

	return extractText(fmt.Sprintf("%v", input)), nil
}

func extractText(s string) State {
	data := []byte(s)
	return State{
		Stream:        io.NopCloser(bytes.NewReader(data)),
		ContentLength: length(int64(len(data))),
		ContentType:   "text/plain;charset=UTF-8",
	}
}

func extractURLForm(uf URLForm) State {
	var buf bytes.Buffer
	for i, pair := range uf.Pairs() {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(urlEncode(pair[0]))
		buf.WriteByte('=')
		buf.WriteString(urlEncode(pair[1]))
	}
	data := buf.Bytes()
	return State{
		Stream:        io.NopCloser(bytes.NewReader(data)),
		ContentLength: length(int64(len(data))),
		ContentType:   "application/x-www-form-urlencoded;charset=UTF-8",
	}
}

func extractBlob(b Blob) State {
	return State{
		Stream:        &lazyBlobStream{blob: b},
		ContentLength: length(b.Size()),
		ContentType:   b.Type(),
	}
}

func extractBytes(data []byte) State {
	if len(data) == 0 {
		return State{ContentLength: length(0)}
	}
	return State{
		Stream:        io.NopCloser(bytes.NewReader(data)),
		ContentLength: length(int64(len(data))),
	}
}

func extractMultipartStream(ms MultipartStream) State {
	state := State{
		Stream:      ms.Open(),
		ContentType: fmt.Sprintf("multipart/form-data; boundary=%s", ms.Boundary()),
	}
	if n, ok := ms.KnownLength(); ok {
		state.ContentLength = length(n)
	}
	return state
}

func extractNativeStream(r io.Reader) State {
	if rc, ok := r.(io.ReadCloser); ok {
		return State{Stream: rc}
	}
	return State{Stream: io.NopCloser(r)}
}

func extractIterable(it ChunkIterator) State {
	return State{Stream: &iteratorStream{it: it}}
}

// lazyBlobStream defers blob.Stream() until the first Read, so Extract
// itself never touches the network or filesystem.
type lazyBlobStream struct {
	blob   Blob
	opened io.ReadCloser
	err    error
}

func (s *lazyBlobStream) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.opened == nil {
		opened, err := s.blob.Stream()
		if err != nil {
			s.err = errors.Wrap(err, "opening blob stream")
			return 0, s.err
		}
		s.opened = opened
	}
	return s.opened.Read(p)
}

func (s *lazyBlobStream) Close() error {
	if s.opened == nil {
		return nil
	}
	return s.opened.Close()
}

// iteratorStream adapts a pull-based ChunkIterator to io.ReadCloser.
type iteratorStream struct {
	it      ChunkIterator
	pending []byte
	done    bool
}

func (s *iteratorStream) Read(p []byte) (int, error) {
	for len(s.pending) == 0 {
		if s.done {
			return 0, io.EOF
		}
		chunk, err := s.it.NextChunk()
		if err != nil {
			if err == io.EOF {
				s.done = true
				return 0, io.EOF
			}
			return 0, errors.Wrap(err, "reading body iterator")
		}
		s.pending = chunk
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *iteratorStream) Close() error { return nil }

func urlEncode(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		switch {
		case b == ' ':
			buf.WriteByte('+')
		case isURLFormSafe(b):
			buf.WriteByte(b)
		default:
			fmt.Fprintf(&buf, "%%%02X", b)
		}
	}
	return buf.String()
}

func isURLFormSafe(b byte) bool {
	return b >= 'A' && b <= 'Z' ||
		b >= 'a' && b <= 'z' ||
		b >= '0' && b <= '9' ||
		b == '-' || b == '_' || b == '.' || b == '*'
}
