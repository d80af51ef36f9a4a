package fetch

import (
	"bytes"
	"io"

	"github.com/nojima/go-fetch/body"
)

// Blob is the conceptual Blob operation set spec.md §3 needs: a known
// size, an optional MIME type, and a lazily-openable byte stream. It is
// re-exported from package body so callers never have to import that
// package directly; any value satisfying this interface, wherever it was
// built, is treated as a blob.
type Blob = body.Blob

type bufferBlob struct {
	data        []byte
	contentType string
}

func (b *bufferBlob) Size() int64  { return int64(len(b.data)) }
func (b *bufferBlob) Type() string { return b.contentType }
func (b *bufferBlob) Stream() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// NewBlob wraps a byte slice and content type as a Blob.
func NewBlob(data []byte, contentType string) Blob {
	return &bufferBlob{data: data, contentType: contentType}
}
