// Package ctxsync provides synchronization primitives that honor context
// cancellation.
package ctxsync

import (
	"context"
)

// NewMutex creates a new instance of Mutex.
func NewMutex() *Mutex {
	return &Mutex{
		sema: make(chan struct{}, 1),
	}
}

// A Mutex is a mutual exclusion lock whose acquisition can be abandoned when
// a context is done.
type Mutex struct {
	sema chan struct{}
}

// Lock locks the mutex with a context.Background().
func (m *Mutex) Lock() {
	_ = m.LockWithContext(context.Background())
}

// LockWithContext locks until Unlock is called or the context is cancelled.
// A context already done fails before the lock is attempted.
func (m *Mutex) LockWithContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.sema <- struct{}{}:
		return nil
	}
}

// TryLock tries to lock m and reports whether it succeeded.
func (m *Mutex) TryLock() bool {
	select {
	case m.sema <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock unlocks m.
func (m *Mutex) Unlock() {
	select {
	case <-m.sema:
	default:
		panic("ctxsync: unlock of unlocked mutex")
	}
}
