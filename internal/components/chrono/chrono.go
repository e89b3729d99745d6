package chrono

import (
	"sync"
	"time"
)

// API is the source of the current time.
//
// note: fault injection point
type API interface {
	Now() time.Time
}

// StandardImpl reads the system clock.
type StandardImpl struct{}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

// ManualImpl only moves when Set or Advance is called.
type ManualImpl struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualImpl(start time.Time) *ManualImpl {
	return &ManualImpl{now: start}
}

func (m *ManualImpl) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualImpl) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

func (m *ManualImpl) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
