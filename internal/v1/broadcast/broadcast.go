// Package broadcast implements a bounded multi-producer, multi-consumer
// broadcast channel. Every subscribed receiver observes every sent value in
// send order. The channel keeps the most recent values in a fixed-size ring;
// a receiver that falls more than the channel capacity behind the producers
// is advanced past the overwritten values and told how many it missed via
// *LagError. Senders never block, so one slow consumer cannot stall
// producers or its sibling consumers.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrClosed is returned by receive operations once the channel is closed
	// and all buffered values have been drained.
	ErrClosed = errors.New("broadcast: channel closed")

	// ErrEmpty is returned by TryRecv when no value is ready. Callers driving
	// a receiver from a select loop should treat it as a spurious wakeup.
	ErrEmpty = errors.New("broadcast: no value ready")
)

// LagError reports that a receiver fell behind the producers and was
// advanced past Count overwritten values. The receive that follows returns
// the oldest value still retained by the channel.
type LagError struct {
	Count uint64
}

func (e *LagError) Error() string {
	return fmt.Sprintf("broadcast: receiver lagged, skipped %d values", e.Count)
}

// Channel is a bounded broadcast channel. The zero value is not usable;
// construct with New.
type Channel[T any] struct {
	mu        sync.Mutex
	capacity  uint64
	buf       []T
	head      uint64 // sequence number assigned to the next Send
	closed    bool
	receivers map[*Receiver[T]]struct{}
}

// New creates a channel retaining up to capacity values for slow receivers.
func New[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		panic("broadcast: capacity must be positive")
	}
	return &Channel[T]{
		capacity:  uint64(capacity),
		buf:       make([]T, capacity),
		receivers: make(map[*Receiver[T]]struct{}),
	}
}

// Send delivers v to every current subscriber and returns the number of
// receivers that will observe it. Send never blocks. Sending on a closed
// channel is a no-op and returns 0.
func (c *Channel[T]) Send(v T) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}
	c.buf[c.head%c.capacity] = v
	c.head++
	for r := range c.receivers {
		r.notify()
	}
	return len(c.receivers)
}

// Subscribe registers a new receiver positioned after the most recently sent
// value: it observes only values sent from now on.
func (c *Channel[T]) Subscribe() *Receiver[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := &Receiver[T]{
		ch:     c,
		cursor: c.head,
		wake:   make(chan struct{}, 1),
	}
	c.receivers[r] = struct{}{}
	if c.closed {
		r.notify()
	}
	return r
}

// ReceiverCount reports the number of live subscriptions.
func (c *Channel[T]) ReceiverCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.receivers)
}

// Close marks the channel closed and wakes all receivers. Receivers drain
// any values still buffered, then observe ErrClosed. Close is idempotent.
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for r := range c.receivers {
		r.notify()
	}
}

// Receiver is a single subscription to a Channel. A Receiver must only be
// used from one goroutine at a time.
type Receiver[T any] struct {
	ch     *Channel[T]
	cursor uint64 // sequence number of the next value to deliver
	wake   chan struct{}
	closed bool
}

// Wait returns a channel that is signaled whenever a value may be ready.
// The signal is permission to call TryRecv, not a guarantee that it will
// succeed. It is intended for use as one arm of a select loop.
func (r *Receiver[T]) Wait() <-chan struct{} {
	return r.wake
}

// TryRecv returns the next value without blocking.
//
// It returns ErrEmpty when the receiver is caught up, *LagError after the
// receiver has been advanced past overwritten values, and ErrClosed once
// the channel is closed and drained, or the receiver itself is closed.
// When values remain buffered after a successful receive (or a lag), the
// wake channel is re-signaled so a select-driven caller returns promptly.
func (r *Receiver[T]) TryRecv() (T, error) {
	var zero T
	c := r.ch
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.closed {
		return zero, ErrClosed
	}
	oldest := uint64(0)
	if c.head > c.capacity {
		oldest = c.head - c.capacity
	}
	if r.cursor < oldest {
		skipped := oldest - r.cursor
		r.cursor = oldest
		r.notify() // retained values are still pending
		return zero, &LagError{Count: skipped}
	}
	if r.cursor == c.head {
		if c.closed {
			return zero, ErrClosed
		}
		return zero, ErrEmpty
	}
	v := c.buf[r.cursor%c.capacity]
	r.cursor++
	if r.cursor < c.head {
		r.notify()
	}
	return v, nil
}

// Recv blocks until a value is ready, the channel is closed, or ctx is done.
// The error contract matches TryRecv, except ErrEmpty is never returned.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, err := r.TryRecv()
		if !errors.Is(err, ErrEmpty) {
			return v, err
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-r.wake:
		}
	}
}

// Close cancels the subscription and removes it from the channel's receiver
// count. Close is idempotent. Values not yet delivered are abandoned.
func (r *Receiver[T]) Close() {
	c := r.ch
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	delete(c.receivers, r)
}

// notify makes the wake channel readable without blocking. Callers hold the
// channel mutex.
func (r *Receiver[T]) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}
