package login

import (
	"context"
	"sync"
)

// ManualSignal lets an operator report that they finished a login by hand.
// A signal is only delivered while an attempt is waiting; repeated signals
// coalesce into one.
type ManualSignal struct {
	mu      sync.Mutex
	waiting int
	ch      chan struct{}
}

func NewManualSignal() *ManualSignal {
	return &ManualSignal{ch: make(chan struct{}, 1)}
}

// Done delivers the signal without blocking. It reports whether an attempt
// was waiting for it.
func (m *ManualSignal) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waiting == 0 {
		return false
	}
	select {
	case m.ch <- struct{}{}:
	default:
	}
	return true
}

// Wait blocks until Done is called or ctx ends.
func (m *ManualSignal) Wait(ctx context.Context) error {
	m.mu.Lock()
	m.waiting++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.waiting--
		if m.waiting == 0 {
			select {
			case <-m.ch:
			default:
			}
		}
		m.mu.Unlock()
	}()

	select {
	case <-m.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether an attempt is waiting for the signal.
func (m *ManualSignal) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiting > 0
}
