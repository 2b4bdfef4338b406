package clock

import (
	"sync"
	"time"
)

// Clocker abstracts the current instant.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock and normalizes the result to UTC.
type TimeClocker struct{}

// New returns a TimeClocker.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time in UTC.
func (*TimeClocker) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a Clocker pinned to a settable instant.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixed returns a Fixed clock that reports t until changed.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Set moves the pinned instant.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}
