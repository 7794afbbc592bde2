package pipe

import (
	"context"
	"sync"
)

// Pipe is an in-memory byte channel connecting one pipeline stage's output
// to the next stage's input. Single producer, single consumer.
//
// Written data accumulates as an append-only list of immutable chunks. The
// consumer tracks its position as (chunk index, byte offset) of the last
// byte it consumed; chunk == -1 means nothing has been read yet. Blocked
// reads queue a wake cell in FIFO order; each Write wakes exactly one.
type Pipe struct {
	mu      sync.Mutex
	chunks  [][]byte
	chunk   int // index of the chunk holding the last consumed byte, -1 before first read
	offset  int // offset of the last consumed byte within that chunk
	waiters []chan struct{}
	closed  bool
}

// New creates an open, empty pipe.
func New() *Pipe {
	return &Pipe{chunk: -1}
}

// Write appends a copy of p to the pipe and wakes the oldest pending
// reader, if any. Empty writes are ignored. Writes after Close are
// silently accepted and remain readable while the consumer drains.
func (p *Pipe) Write(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	chunk := make([]byte, len(b))
	copy(chunk, b)

	p.mu.Lock()
	p.chunks = append(p.chunks, chunk)
	p.wakeOne()
	p.mu.Unlock()
	return nil
}

// Read returns up to max bytes. After the writer closes, reads drain any
// remaining buffered data and then return the empty end-of-stream result;
// they never block. Before close, Read blocks until data is available. A
// single Read never crosses a chunk boundary, so it may return fewer than
// max bytes even when more data is buffered.
func (p *Pipe) Read(ctx context.Context, max int) ([]byte, error) {
	p.mu.Lock()
	for {
		if max <= 0 {
			p.mu.Unlock()
			return nil, nil
		}
		if c, off, ok := p.nextPos(); ok {
			chunk := p.chunks[c]
			n := len(chunk) - off
			if n > max {
				n = max
			}
			out := chunk[off : off+n]
			p.chunk, p.offset = c, off+n-1
			p.mu.Unlock()
			return out, nil
		}
		if p.closed {
			p.mu.Unlock()
			return nil, nil
		}

		// No readable position: queue a wake cell and suspend. The loop
		// re-evaluates on wake, so a close with no new data falls through
		// to the end-of-stream return above.
		wake := make(chan struct{}, 1)
		p.waiters = append(p.waiters, wake)
		p.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			p.mu.Lock()
			p.dropWaiter(wake)
			p.mu.Unlock()
			return nil, ctx.Err()
		}
		p.mu.Lock()
	}
}

// Close marks the writer side done. Idempotent, never blocks. A pending
// reader is woken through the same path as Write so a consumer blocked
// with no data observes end-of-stream promptly.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.wakeOne()
	}
	p.mu.Unlock()
	return nil
}

// Closed reports whether the writer side has closed.
func (p *Pipe) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// nextPos computes the position of the next unread byte, if one exists.
// Caller holds p.mu.
func (p *Pipe) nextPos() (chunk, offset int, ok bool) {
	switch {
	case p.chunk == -1:
		if len(p.chunks) > 0 {
			return 0, 0, true
		}
		return 0, 0, false
	case p.offset+1 < len(p.chunks[p.chunk]):
		return p.chunk, p.offset + 1, true
	case p.chunk == len(p.chunks)-1:
		// Consumer has caught up to the producer.
		return 0, 0, false
	default:
		return p.chunk + 1, 0, true
	}
}

// wakeOne signals the oldest queued reader. Caller holds p.mu.
func (p *Pipe) wakeOne() {
	if len(p.waiters) == 0 {
		return
	}
	wake := p.waiters[0]
	p.waiters = p.waiters[1:]
	wake <- struct{}{}
}

// dropWaiter removes a wake cell abandoned by a cancelled read. Caller
// holds p.mu.
func (p *Pipe) dropWaiter(wake chan struct{}) {
	for i, w := range p.waiters {
		if w == wake {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return
		}
	}
}
