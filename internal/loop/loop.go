// Package loop serializes state mutations onto a single goroutine. Blocking
// work runs elsewhere and its completion is posted back onto the loop.
package loop

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var ErrStopped = errors.New("event loop stopped")

type Loop struct {
	queue     chan func()
	done      chan struct{}
	afterTask func()
	logger    *logrus.Logger
}

func New(logger *logrus.Logger, size int) *Loop {
	if size <= 0 {
		size = 256
	}
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// SetAfterTask installs fn to run on the loop goroutine after every task,
// including async completions. It must be called before Run.
func (l *Loop) SetAfterTask(fn func()) {
	l.afterTask = fn
}

// Run processes posted tasks until ctx is cancelled. It must be called once.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			l.exec(fn)
			if l.afterTask != nil {
				l.exec(l.afterTask)
			}
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithField("panic", r).Error("event loop task panicked")
		}
	}()
	fn()
}

// Post enqueues fn. It must not be called from the loop goroutine itself when
// the queue may be full. It returns false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it and the after-task hook to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	ok := l.Post(func() {
		defer close(finished)
		fn()
		if l.afterTask != nil {
			l.afterTask()
		}
	})
	if !ok {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("waiting for event loop: %w", ctx.Err())
	}
}

// Async runs work on its own goroutine and delivers the result to done on the
// loop goroutine. Results arriving after the loop stopped are dropped.
func Async[T any](ctx context.Context, l *Loop, work func(context.Context) (T, error), done func(T, error)) {
	go func() {
		v, err := work(ctx)
		if !l.Post(func() { done(v, err) }) {
			l.logger.Debug("dropping async result: event loop stopped")
		}
	}()
}
