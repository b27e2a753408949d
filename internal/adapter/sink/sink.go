// Package sink contains [domain.EventSink] implementations for audit
// notifications of committed operations.
package sink

import (
	"sync"

	"github.com/firelite-db/firelite/domain"
)

// Noop implements domain.EventSink and discards every event.
type Noop struct{}

// NewNoop returns a sink that discards events.
func NewNoop() domain.EventSink {
	return &Noop{}
}

// Notify implements domain.EventSink.
func (*Noop) Notify(domain.Event) {}

// Memory implements domain.EventSink by recording events in order. Safe for
// concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewMemory returns a sink that records events for later inspection.
func NewMemory() *Memory {
	return &Memory{}
}

// Notify implements domain.EventSink.
func (m *Memory) Notify(e domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Events returns a copy of the recorded events.
func (m *Memory) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]domain.Event, len(m.events))
	copy(res, m.events)
	return res
}

// Notify invokes sink.Notify guarding against panics so a misbehaving sink
// can never affect the outcome of the commit that feeds it. A nil sink is a
// no-op.
func Notify(s domain.EventSink, e domain.Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Notify(e)
}
