package fetch

import (
	"io"

	"github.com/nojima/go-fetch/signal"
)

// abortableStream wraps a byte stream so that once its signal fires,
// every subsequent Read surfaces the signal's reason instead of more
// bytes — spec.md §4.5 and §5's cancellation semantics, applied
// uniformly to both request and response bodies. Because signal.Source
// is a context.Context, checking it is a non-blocking channel select, so
// there is no listener to register or leak (spec.md §9's pairing
// requirement is satisfied by construction).
type abortableStream struct {
	io.ReadCloser
	signal signal.Source
}

func withAbort(stream io.ReadCloser, sig signal.Source) io.ReadCloser {
	if stream == nil || sig == nil {
		return stream
	}
	return &abortableStream{ReadCloser: stream, signal: sig}
}

func (a *abortableStream) Read(p []byte) (int, error) {
	if reason := signal.Reason(a.signal); reason != nil {
		return 0, reason
	}
	n, err := a.ReadCloser.Read(p)
	if err != nil {
		if reason := signal.Reason(a.signal); reason != nil {
			return n, reason
		}
	}
	return n, err
}
