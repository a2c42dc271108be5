// Package strand provides the single-writer executor that serializes
// every state-mutating task. It is the Go rendering of a logical strand:
// one goroutine draining a FIFO queue, cooperative on the strand and
// parallel everywhere else.
package strand

import (
	"context"
	"errors"
	"sync"
)

var ErrStopped = errors.New("strand stopped")

type Strand struct {
	tasks chan func()
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

func New(queueSize int) *Strand {
	s := &Strand{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Strand) loop() {
	defer close(s.done)
	for fn := range s.tasks {
		fn()
	}
}

// Post enqueues fn, blocking while the queue is full. Returns false once
// the strand is closed; a true return guarantees fn will run. Intake and
// Close share the mutex, so a committed task can never land after the
// queue is closed.
func (s *Strand) Post(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.tasks <- fn
	return true
}

// Do enqueues fn and waits for it to finish. If ctx expires first the
// call returns early but the task still runs; its result is discarded,
// matching abandoned HTTP requests.
func (s *Strand) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if !s.Post(func() {
		fn()
		close(ran)
	}) {
		return ErrStopped
	}
	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops intake, runs every committed task and blocks until the
// loop exits.
func (s *Strand) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.tasks)
	}
	s.mu.Unlock()
	<-s.done
}
