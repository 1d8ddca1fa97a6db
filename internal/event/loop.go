// Package event runs the form's handlers on a single goroutine.
//
// Every DOM access, store mutation and component state change happens inside
// a task on the Loop, so components need no locks. Blocking work (thumbnail
// decoding, the intake call) runs on its own goroutine via Go and hands its
// result back to the loop as a continuation.
package event

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Run when the loop was already stopped, and by Do
// when its task can no longer run.
var ErrClosed = errors.New("event loop closed")

// Loop is a FIFO task queue drained by the goroutine that calls Run.
type Loop struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []func()
	inflight int
	closed   bool

	// stopped is closed once Run has dropped the queue and returned.
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewLoop() *Loop {
	l := &Loop{stopped: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Post enqueues fn and reports whether it was queued. Tasks run in the order
// they were posted; nothing is queued once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	l.inflight++
	l.cond.Broadcast()
	return true
}

// Go runs work off the loop. The continuation it returns, if any, is posted
// back to the loop when work finishes. Settle waits for both halves.
func (l *Loop) Go(work func() func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.inflight++
	l.mu.Unlock()

	go func() {
		defer l.done()
		if cont := work(); cont != nil {
			l.Post(cont)
		}
	}()
}

// Do posts fn and blocks until it has run. If the loop is closed before fn
// runs, Do returns ErrClosed instead. It must not be called from a task on
// the same loop.
func (l *Loop) Do(fn func()) error {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-ran:
		return nil
	case <-l.stopped:
		select {
		case <-ran:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Settle blocks until the queue is empty and no Go work is outstanding.
func (l *Loop) Settle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.inflight > 0 && !l.closed {
		l.cond.Wait()
	}
}

// Run drains the queue until ctx is cancelled. Queued tasks that have not
// started when ctx ends are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		l.closed = true
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	defer stop()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.queue = nil
			l.mu.Unlock()
			l.stopOnce.Do(func() { close(l.stopped) })
			return ctx.Err()
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		task()
		l.done()
	}
}

// Start runs the loop on a new goroutine and returns a stop function that
// cancels it and waits for Run to return.
func (l *Loop) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		_ = l.Run(ctx)
	}()
	return func() {
		cancel()
		<-exited
	}
}

func (l *Loop) done() {
	l.mu.Lock()
	l.inflight--
	if l.inflight <= 0 {
		l.cond.Broadcast()
	}
	l.mu.Unlock()
}
