// Package view coordinates filter state with the fragments a page displays.
//
// Concurrency model: everything that touches a view's state runs on one Loop.
// Other goroutines (HTTP handlers, timers) never call into a Coordinator
// directly; they Post a task and the loop runs it. Tasks run one at a time in
// the order they were posted, so no mutexes guard the view state itself.
package view

import (
	"context"
	"sync"
)

// Loop is a single-threaded cooperative task queue. Posted tasks run in FIFO
// order. Idle tasks run only when no posted task is waiting.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	idle   []func()
	closed bool

	wake chan struct{}
}

// NewLoop returns an empty loop. Nothing runs until Run or RunPending is called.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	return l.push(&l.tasks, fn)
}

// Idle queues fn to run the next time the loop has nothing else to do.
func (l *Loop) Idle(fn func()) bool {
	return l.push(&l.idle, fn)
}

func (l *Loop) push(q *[]func(), fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	*q = append(*q, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tasks) > 0 {
		fn := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		return fn, true
	}
	if len(l.idle) > 0 {
		fn := l.idle[0]
		l.idle[0] = nil
		l.idle = l.idle[1:]
		return fn, true
	}
	return nil, false
}

// RunPending runs queued tasks on the calling goroutine until both queues are
// empty and returns how many ran. Tests use it to step the loop by hand.
func (l *Loop) RunPending() int {
	n := 0
	for {
		fn, ok := l.next()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Run processes tasks until ctx is cancelled, then stops accepting new ones.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops the loop from accepting tasks and drops anything still queued.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.tasks = nil
	l.idle = nil
	l.mu.Unlock()
}

// Closed reports whether the loop has stopped.
func (l *Loop) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
