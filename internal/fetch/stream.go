package fetch

import (
	"errors"
	"io"
	"iter"
)

const defaultChunkSize = 256 * 1024

// Chunks exposes a reader as a lazy, finite, single-pass sequence of
// chunk-received events. The yielded slice is reused between iterations;
// consumers must not retain it.
func Chunks(r io.Reader, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = defaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
		}
	}
}
