package decode

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"
)

// deflateAutodetectReader buffers until the first non-empty chunk of the
// underlying stream is observed, then decides between zlib-wrapped
// deflate and raw deflate by inspecting the low nibble of the first byte
// (spec.md §4.3, §9: a two-state mini state machine, UNDETERMINED ->
// ZLIB|RAW). Empty chunks before that point are propagated without
// committing to either variant.
type deflateAutodetectReader struct {
	src    io.Reader
	inner  io.Reader // set once the variant is determined
	closer io.Closer
}

func newDeflateAutodetectReader(r io.Reader) io.ReadCloser {
	return &deflateAutodetectReader{src: r}
}

func (d *deflateAutodetectReader) Read(p []byte) (int, error) {
	if d.inner == nil {
		if err := d.determine(); err != nil {
			return 0, err
		}
		if d.inner == nil {
			// src reached EOF before producing any bytes: an empty body.
			return 0, io.EOF
		}
	}
	n, err := d.inner.Read(p)
	if err != nil && err != io.EOF {
		return n, errors.Wrap(err, "decoding deflate body")
	}
	return n, err
}

// determine peeks a single byte from src without losing it, then wires up
// the zlib or raw-deflate decompressor over the peeked byte plus the rest
// of src.
func (d *deflateAutodetectReader) determine() error {
	var first [1]byte
	for {
		n, err := d.src.Read(first[:])
		if n > 0 {
			break
		}
		if err == io.EOF {
			return nil // empty body; never commits to a variant
		}
		if err != nil {
			return errors.Wrap(err, "reading deflate body for autodetection")
		}
		// n == 0, err == nil: empty chunk, keep waiting.
	}

	replay := io.MultiReader(bytes.NewReader(first[:]), d.src)
	if first[0]&0x0F == 0x08 {
		zr, err := zlib.NewReader(replay)
		if err != nil {
			return errors.Wrap(err, "decoding zlib-wrapped deflate body")
		}
		d.inner = zr
		d.closer = zr
	} else {
		fr := flate.NewReader(replay)
		d.inner = fr
		d.closer = fr
	}
	return nil
}

func (d *deflateAutodetectReader) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
