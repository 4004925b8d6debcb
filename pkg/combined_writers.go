package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all of its writers. A failing writer
// does not stop the others; the failures are combined into the returned error.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

// Write reports the number of bytes written by the writer that wrote the most,
// which is len(p) as long as one writer succeeded.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var maxWritten int
	var err error
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr == nil && written < len(p) {
			werr = io.ErrShortWrite
		}
		err = multierr.Append(err, werr)
		if written > maxWritten {
			maxWritten = written
		}
	}
	return maxWritten, err
}
