// Package lifekit provides lifecycle scoped cancellation:
// a Token is attached to the lifetime of an owner (Mount),
// and once the owner detaches, every outcome guarded by the token is silently absorbed.
//
// The Token decouples "the work finished" from "is it safe to act on the outcome"
// by checking liveness at the moment of delivery rather than at the moment of dispatch.
// The underlying work is not aborted; only its outcome gets discarded.
package lifekit

import "sync"

// Lifecycle is the notification point a lifecycle host must provide.
// Detaching must invoke every registered teardown exactly once.
type Lifecycle interface {
	// OnDetach registers a teardown that runs when the lifecycle ends.
	OnDetach(func())
}

// Attach creates a Token that lives as long as the given lifecycle.
// When the lifecycle detaches, the token transitions to its cancelled state.
//
// A nil lifecycle yields a free standing token that can only be cancelled directly.
func Attach(lc Lifecycle) *Token {
	var token Token
	if lc != nil {
		lc.OnDetach(token.Cancel)
	}
	return &token
}

// Token is a liveness flag with two states: active and cancelled.
// The transition is one way; there is no path back from cancelled.
//
// The zero value is an active token, ready for use.
type Token struct {
	mutex     sync.Mutex
	cancelled bool
}

// Cancel transitions the token into its cancelled state.
// Calling it on an already cancelled token is a no-op.
func (t *Token) Cancel() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.cancelled = true
}

// IsCancelled reports whether the token has been cancelled.
func (t *Token) IsCancelled() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.cancelled
}

// Guard runs the given block only when the token is still active
// at the moment of the check, and reports whether the block ran.
//
// When the token is already cancelled, the block is absorbed:
// not invoked, not deferred, no error, no panic.
// A cancellation always happens-before any Guard check that follows it.
func (t *Token) Guard(blk func()) bool {
	if t.IsCancelled() {
		return false
	}
	blk()
	return true
}

// Mount is a concrete Lifecycle host:
// teardowns registered with OnDetach run once Detach is called.
//
// The zero value is an attached mount, ready for use.
type Mount struct {
	mutex     sync.Mutex
	detached  bool
	teardowns []func()
}

// OnDetach registers a teardown on the mount.
// If the mount is already detached, the teardown runs immediately,
// as the lifetime it would belong to is already over.
func (m *Mount) OnDetach(fn func()) {
	if fn == nil {
		return
	}
	m.mutex.Lock()
	if m.detached {
		m.mutex.Unlock()
		fn()
		return
	}
	m.teardowns = append(m.teardowns, fn)
	m.mutex.Unlock()
}

// Detach ends the mount's lifetime and runs the registered teardowns
// in reverse registration order. Calling Detach again is a no-op;
// each teardown runs exactly once. Detaching without any registered
// teardown is also valid.
func (m *Mount) Detach() {
	m.mutex.Lock()
	if m.detached {
		m.mutex.Unlock()
		return
	}
	m.detached = true
	teardowns := m.teardowns
	m.teardowns = nil
	m.mutex.Unlock()
	for i := len(teardowns) - 1; 0 <= i; i-- {
		teardowns[i]()
	}
}

// IsDetached reports whether the mount's lifetime has already ended.
func (m *Mount) IsDetached() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.detached
}
