// Package body implements the body extractor (C1) and the multipart
// encoder (C2): turning one of the many shapes a caller can hand fetch as
// a request body into a uniform byte stream plus a known-or-unknown
// length and content type.
package body

import "io"

// Blob is the conceptual operation set spec.md requires of a blob-shaped
// body value: a known size, an optional MIME type, and a way to stream its
// bytes. Any value satisfying this interface is treated as a blob no
// matter where it was constructed — capability, not concrete type, decides
// the classification.
type Blob interface {
	Size() int64
	Type() string
	Stream() (io.ReadCloser, error)
}

// namedBlob is the subset of Blob that also knows its own filename. Most
// blobs don't; a *fetch.File (fetch.NewFile) does.
type namedBlob interface {
	Blob
	Name() string
}

// ByteView is a byte-array view with an explicit offset and length, one of
// the three "contiguous byte buffer" shapes spec.md §3 distinguishes from
// a plain []byte (Go has no separate array-buffer type, so a bare []byte
// covers that third shape).
type ByteView struct {
	Data   []byte
	Offset int
	Length int
}

func (v ByteView) bytes() []byte {
	return v.Data[v.Offset : v.Offset+v.Length]
}

// ReadableStream is the capability probed for a "standards readable byte
// stream" (variant 5): a stream that can be cancelled, distinct from an
// arbitrary native io.Reader (variant 8).
type ReadableStream interface {
	io.Reader
	Cancel(reason error) error
}

// FormValue is one entry of a FormData-shaped input: either a plain string
// or a Blob, never both.
type FormValue struct {
	Name  string
	Value string
	File  Blob
}

// FormDataEntries is the capability probed for variant 6: an ordered
// sequence of (name, string|blob) entries.
type FormDataEntries interface {
	Entries() []FormValue
}

// URLForm is the capability probed for variant 2: an ordered key/value
// list meant to be rendered as application/x-www-form-urlencoded.
type URLForm interface {
	Pairs() [][2]string
}

// MultipartStream is the capability probed for variant 7: a pre-assembled
// multipart body that already carries its own boundary and, optionally, a
// known total length.
type MultipartStream interface {
	Boundary() string
	KnownLength() (int64, bool)
	Open() io.ReadCloser
}

// ChunkIterator is the capability probed for variant 9: a pull-based
// source of byte chunks, sync or async, that signals completion with
// io.EOF from NextChunk.
type ChunkIterator interface {
	NextChunk() ([]byte, error)
}

// State is the uniform output of Extract, spec.md §3's BodyState.
//
// Invariants:
//   - Stream == nil iff ContentLength is nil or *ContentLength == 0 and
//     there are no bytes to send.
//   - If ContentLength is non-nil, Stream emits exactly that many bytes
//     over its lifetime.
//   - ContentType is set only when Extract synthesized the
//     representation (text, url-form, multipart); a caller-provided blob
//     type is preserved, opaque streams yield no type.
type State struct {
	Stream        io.ReadCloser
	ContentLength *int64
	ContentType   string
}

func length(n int64) *int64 { return &n }
