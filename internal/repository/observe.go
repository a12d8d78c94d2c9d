// Package repository maps storage rows to domain entities. Repositories own
// query shape, ordering, pagination and aggregation; they perform no
// business validation and propagate errors verbatim.
package repository

import (
	"context"
	"sync"

	"dailymoney/internal/storage"
)

// Subscription is a reactive query handle. Updates carries the initial
// snapshot immediately and a fresh snapshot after every write affecting the
// watched tables. Slow receivers only ever see the latest snapshot. The
// channel closes on cancellation or query failure; after it closes, Err
// reports the failure, if any.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc

	mu  sync.Mutex
	err error
}

// Updates returns the snapshot channel.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

// Cancel stops delivery. Writes already committed are unaffected.
func (s *Subscription[T]) Cancel() {
	s.cancel()
}

// Err returns the query error that terminated the stream, or nil.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// send delivers v, replacing an unconsumed older snapshot if necessary.
func (s *Subscription[T]) send(ctx context.Context, v T) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case s.updates <- v:
			return true
		default:
			// Drop the stale snapshot and retry.
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// observe runs query once for the initial snapshot and again after each
// notification on the given tables.
func observe[T any](ctx context.Context, n *storage.Notifier, query func(context.Context) (T, error), tables ...storage.Table) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		updates: make(chan T, 1),
		cancel:  cancel,
	}
	signal, unsubscribe := n.Subscribe(tables...)

	go func() {
		defer close(sub.updates)
		defer unsubscribe()
		for {
			snapshot, err := query(ctx)
			if err != nil {
				if ctx.Err() == nil {
					sub.setErr(err)
				}
				return
			}
			if !sub.send(ctx, snapshot) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
		}
	}()

	return sub
}
