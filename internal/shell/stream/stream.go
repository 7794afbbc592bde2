package stream

import (
	"context"
	"io"
	"sync"
)

// Source is the read side of a stage endpoint. Read returns at most max
// bytes; an empty result with a nil error signals end-of-stream.
type Source interface {
	Read(ctx context.Context, max int) ([]byte, error)
}

// Sink is the write side of a stage endpoint. Close is idempotent.
type Sink interface {
	Write(ctx context.Context, p []byte) error
	Close() error
}

// ReaderSource adapts an io.Reader (os.Stdin, a process pipe) to Source.
type ReaderSource struct {
	r io.Reader
}

// NewReaderSource wraps r as a Source.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// Reader exposes the underlying reader so a process runner can hand it to
// a child directly instead of pumping through a goroutine.
func (s *ReaderSource) Reader() io.Reader {
	return s.r
}

// Read reads up to max bytes from the underlying reader. io.EOF is mapped
// to the empty end-of-stream result.
func (s *ReaderSource) Read(ctx context.Context, max int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if max <= 0 {
		return nil, nil
	}
	buf := make([]byte, max)
	n, err := s.r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	return nil, err
}

// WriterSink adapts an io.Writer (os.Stdout, a process pipe) to Sink.
// If the writer is also an io.Closer, Close closes it once; otherwise
// Close is a no-op, which keeps shared streams like os.Stdout open.
type WriterSink struct {
	w         io.Writer
	closeOnce sync.Once
	closeErr  error
}

// NewWriterSink wraps w as a Sink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Writer exposes the underlying writer for direct child wiring.
func (s *WriterSink) Writer() io.Writer {
	return s.w
}

// Write writes p to the underlying writer.
func (s *WriterSink) Write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.w.Write(p)
	return err
}

// Close closes the underlying writer if it is closable. Idempotent.
func (s *WriterSink) Close() error {
	s.closeOnce.Do(func() {
		if c, ok := s.w.(io.Closer); ok {
			s.closeErr = c.Close()
		}
	})
	return s.closeErr
}

// BytesSource serves a fixed byte slice, then end-of-stream. Useful for
// feeding literal input to a pipeline's first stage.
type BytesSource struct {
	mu   sync.Mutex
	data []byte
}

// NewBytesSource creates a Source over data.
func NewBytesSource(data []byte) *BytesSource {
	return &BytesSource{data: data}
}

// Read returns the next at-most-max bytes of the remaining data.
func (s *BytesSource) Read(ctx context.Context, max int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) == 0 || max <= 0 {
		return nil, nil
	}
	n := max
	if n > len(s.data) {
		n = len(s.data)
	}
	out := s.data[:n]
	s.data = s.data[n:]
	return out, nil
}

// Empty returns a Source that is already at end-of-stream.
func Empty() Source {
	return NewBytesSource(nil)
}

// Buffer is a Sink that accumulates everything written to it. Used to
// capture pipeline output for the service surface and in tests.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// NewBuffer creates an empty capture buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Write appends p to the buffer.
func (b *Buffer) Write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	return nil
}

// Close marks the buffer closed. Idempotent; buffered data stays readable.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Bytes returns a copy of everything written so far.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// String returns the buffered data as a string.
func (b *Buffer) String() string {
	return string(b.Bytes())
}
