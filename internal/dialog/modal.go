// Package dialog holds a small state machine for blocking confirm/cancel
// prompts.
package dialog

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotOpen     = errors.New("dialog is not open")
	ErrAlreadyOpen = errors.New("dialog is already open")
)

type State int

const (
	Closed State = iota
	Open
	Confirmed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "closed"
	}
}

// Action is how an open dialog was resolved.
type Action[R any] struct {
	Confirmed bool
	Value     R
}

// Modal shows one payload at a time and hands the answer back to whoever
// opened it.
type Modal[P, R any] struct {
	mu      sync.Mutex
	state   State
	payload P
	done    chan Action[R]
	opened  chan struct{}
}

func New[P, R any]() *Modal[P, R] {
	return &Modal[P, R]{}
}

func (m *Modal[P, R]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Payload returns what the dialog is currently showing.
func (m *Modal[P, R]) Payload() (P, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Open {
		var zero P
		return zero, false
	}
	return m.payload, true
}

// Wait blocks until the dialog is open and returns what it shows.
func (m *Modal[P, R]) Wait(ctx context.Context) (P, error) {
	for {
		m.mu.Lock()
		if m.state == Open {
			p := m.payload
			m.mu.Unlock()
			return p, nil
		}
		if m.opened == nil {
			m.opened = make(chan struct{})
		}
		opened := m.opened
		m.mu.Unlock()

		select {
		case <-opened:
		case <-ctx.Done():
			var zero P
			return zero, ctx.Err()
		}
	}
}

// Open shows payload and blocks until Confirm, Cancel or ctx is done. A
// cancelled context resolves the dialog as cancelled.
func (m *Modal[P, R]) Open(ctx context.Context, payload P) (Action[R], error) {
	m.mu.Lock()
	if m.state == Open {
		m.mu.Unlock()
		return Action[R]{}, ErrAlreadyOpen
	}
	done := make(chan Action[R], 1)
	m.state, m.payload, m.done = Open, payload, done
	if m.opened != nil {
		close(m.opened)
		m.opened = nil
	}
	m.mu.Unlock()

	select {
	case a := <-done:
		return a, nil
	case <-ctx.Done():
		if err := m.resolve(Cancelled, Action[R]{}); err != nil {
			// Resolved concurrently with the cancellation.
			return <-done, nil
		}
		<-done
		return Action[R]{}, ctx.Err()
	}
}

func (m *Modal[P, R]) resolve(to State, a Action[R]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Open {
		return ErrNotOpen
	}
	var zero P
	m.state, m.payload = to, zero
	m.done <- a
	return nil
}

func (m *Modal[P, R]) Confirm(value R) error {
	return m.resolve(Confirmed, Action[R]{Confirmed: true, Value: value})
}

func (m *Modal[P, R]) Cancel() error {
	return m.resolve(Cancelled, Action[R]{})
}
