// Package rasterpool maintains a bounded set of long-lived external
// rasterization workers, communicating over a simple request/response
// protocol, for callers that want pixel output beyond the builtin PNG
// encoder. It is an optional suspension point: nothing in the decode or
// atlas pipeline requires it.
package rasterpool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrShutDown is returned by Submit once the pool has begun shutting down.
var ErrShutDown = errors.New("rasterpool: shut down")

// ErrWorkerGone is returned to a pending request whose worker exited before
// responding.
var ErrWorkerGone = errors.New("rasterpool: worker exited before responding")

// DefaultTimeout is the per-request deadline before a worker is considered
// unavailable.
const DefaultTimeout = 30 * time.Second

// Request is one rasterization job: an opaque payload (e.g. an SVG document)
// and a unique id the worker's response must echo back.
type Request struct {
	ID      uint64
	Payload []byte
}

// Response is a worker's reply to a Request with a matching ID.
type Response struct {
	ID    uint64
	Image []byte
	Err   string
}

// Worker is a long-lived external rasterization process, addressed by a
// line-oriented request/response protocol over its own pipes.
type Worker interface {
	Send(Request) error
	Recv() (Response, error)
	io.Closer
}

type pending struct {
	resultCh chan Response
}

// Pool dispatches rasterization requests to a fixed set of workers and
// matches asynchronous responses back to their caller via request id.
type Pool struct {
	mu       sync.Mutex
	workers  []Worker
	pending  map[uint64]*pending
	nextID   uint64
	timeout  time.Duration
	shutdown bool
}

// New starts reader loops over the given already-connected workers.
func New(workers []Worker, timeout time.Duration) *Pool {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p := &Pool{
		workers: workers,
		pending: map[uint64]*pending{},
		timeout: timeout,
	}
	for _, w := range workers {
		go p.readLoop(w)
	}
	return p
}

func (p *Pool) readLoop(w Worker) {
	for {
		resp, err := w.Recv()
		if err != nil {
			p.rejectAll(ErrWorkerGone)
			return
		}
		p.mu.Lock()
		entry, ok := p.pending[resp.ID]
		if ok {
			delete(p.pending, resp.ID)
		}
		p.mu.Unlock()
		if ok {
			entry.resultCh <- resp
		}
	}
}

// rejectAll fails every pending request when a worker exits unexpectedly;
// a pending record must survive worker exit rather than hang forever.
func (p *Pool) rejectAll(cause error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, entry := range p.pending {
		entry.resultCh <- Response{ID: id, Err: cause.Error()}
		delete(p.pending, id)
	}
}

// Submit dispatches payload to a worker chosen round-robin by request id
// (every worker is equally capable) and blocks until the matching
// response arrives, the per-request timeout elapses, or ctx is cancelled.
func (p *Pool) Submit(ctx context.Context, payload []byte) ([]byte, error) {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		return nil, ErrShutDown
	}
	if len(p.workers) == 0 {
		p.mu.Unlock()
		return nil, fmt.Errorf("rasterpool: no workers available")
	}
	id := p.nextID
	p.nextID++
	worker := p.workers[int(id)%len(p.workers)]
	entry := &pending{resultCh: make(chan Response, 1)}
	p.pending[id] = entry
	p.mu.Unlock()

	if err := worker.Send(Request{ID: id, Payload: payload}); err != nil {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, fmt.Errorf("rasterpool: dispatching request: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	select {
	case resp := <-entry.resultCh:
		if resp.Err != "" {
			return nil, errors.New(resp.Err)
		}
		return resp.Image, nil
	case <-timeoutCtx.Done():
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
		return nil, fmt.Errorf("rasterpool: request %d: %w", id, timeoutCtx.Err())
	}
}

// Shutdown marks the pool closed, rejects every pending request, and closes
// every worker. In-flight buffers held by workers are released by Close.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.shutdown = true
	p.mu.Unlock()

	p.rejectAll(ErrShutDown)

	for _, w := range p.workers {
		w.Close()
	}
}
