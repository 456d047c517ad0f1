// Package mainloop serializes tree mutations and deferred callbacks onto a
// single consumer goroutine.
package mainloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/panetree/internal/domain/entity"
)

const defaultQueueSize = 64

// Loop is a single-consumer task queue. Callbacks posted from any goroutine
// run one at a time on the goroutine calling Run or Drain. Post never blocks,
// so callbacks may post again from the loop itself.
type Loop struct {
	queue chan func()

	mu        sync.Mutex
	pending   map[string]func()
	overflow  []func() // FIFO backlog while queue is full
	destroyed bool
}

// New creates a loop whose queue buffers size callbacks; further posts wait
// in an unbounded backlog.
func New(size int) *Loop {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Loop{
		queue:   make(chan func(), size),
		pending: make(map[string]func()),
	}
}

// Post enqueues fn. It returns false once the loop is destroyed.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return false
	}
	if len(l.overflow) > 0 {
		l.overflow = append(l.overflow, fn)
		return true
	}
	select {
	case l.queue <- fn:
	default:
		l.overflow = append(l.overflow, fn)
	}
	return true
}

// refill moves backlog into the queue slots freed by the consumer.
func (l *Loop) refill() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.overflow) > 0 {
		select {
		case l.queue <- l.overflow[0]:
			l.overflow[0] = nil
			l.overflow = l.overflow[1:]
		default:
			return
		}
	}
	l.overflow = nil
}

// PostCoalesced merges bursts of same-key work: while a run for key is
// queued, later calls only replace the callback, so the latest one runs once.
func (l *Loop) PostCoalesced(key string, fn func()) {
	if fn == nil || key == "" {
		return
	}

	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return
	}
	_, queued := l.pending[key]
	l.pending[key] = fn
	l.mu.Unlock()
	if queued {
		return
	}

	l.Post(func() {
		l.mu.Lock()
		latest := l.pending[key]
		delete(l.pending, key)
		l.mu.Unlock()

		if latest != nil {
			latest()
		}
	})
}

// AfterFunc runs fn on the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) entity.Task {
	t := &timerTask{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.state.CompareAndSwap(taskPending, taskDone) {
				fn()
			}
		})
	})
	return t
}

// Run executes queued callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.refill()
			fn()
		}
	}
}

// Drain runs every callback already queued without waiting for new ones and
// returns how many ran.
func (l *Loop) Drain() int {
	ran := 0
	for {
		select {
		case fn := <-l.queue:
			l.refill()
			fn()
			ran++
		default:
			return ran
		}
	}
}

// Destroy drops coalesced work and rejects further posts.
func (l *Loop) Destroy() {
	l.mu.Lock()
	l.destroyed = true
	l.pending = map[string]func(){}
	l.overflow = nil
	l.mu.Unlock()
}

const (
	taskPending int32 = iota
	taskDone
)

type timerTask struct {
	timer *time.Timer
	state atomic.Int32
}

// Cancel stops the timer. A callback already queued on the loop is skipped.
func (t *timerTask) Cancel() bool {
	t.timer.Stop()
	return t.state.CompareAndSwap(taskPending, taskDone)
}
