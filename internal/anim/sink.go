// Package anim projects behavior state onto animation parameters.
package anim

import "sync"

// Animation parameter names written by Sync.
const (
	ParamSpeed       = "Speed"
	ParamIsMoving    = "IsMoving"
	ParamIsAttacking = "IsAttacking"
)

// ParameterSink receives animation parameter writes.
// Implementations belong to the host; writes are idempotent and arrive
// every tick whether or not the value changed.
type ParameterSink interface {
	SetFloat(name string, value float64)
	SetBool(name string, value bool)
}

// MemorySink is a ParameterSink that records the latest values.
// Used by tests and the inspector snapshot. Thread-safe.
type MemorySink struct {
	mu     sync.RWMutex
	floats map[string]float64
	bools  map[string]bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		floats: make(map[string]float64),
		bools:  make(map[string]bool),
	}
}

// SetFloat records a float parameter.
func (s *MemorySink) SetFloat(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.floats[name] = value
}

// SetBool records a bool parameter.
func (s *MemorySink) SetBool(name string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bools[name] = value
}

// Float returns the last recorded float for name.
func (s *MemorySink) Float(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.floats[name]
}

// Bool returns the last recorded bool for name.
func (s *MemorySink) Bool(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bools[name]
}
