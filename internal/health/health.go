// Package health tracks reachability of the external collaborators
// (blog API, object storage) as observed by the most recent call to each.
package health

import (
	"sync"
	"time"
)

// Component names reported by the clients.
const (
	ComponentAPI     = "api"
	ComponentStorage = "storage"
)

// Status is the last observed state of one component.
type Status struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"lastCheck"`
	LastSuccess time.Time `json:"lastSuccess,omitempty"`
	LastError   error     `json:"-"`
	Message     string    `json:"message,omitempty"`
}

// Tracker records per-component status. The zero value is not usable; use New.
type Tracker struct {
	mu         sync.RWMutex
	components map[string]*Status
	now        func() time.Time
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		components: make(map[string]*Status),
		now:        time.Now,
	}
}

// Record stores the outcome of a call: nil err marks the component healthy.
// A nil tracker ignores the call so clients can run without one.
func (t *Tracker) Record(component string, err error) {
	if t == nil {
		return
	}
	if err != nil {
		t.SetUnhealthy(component, err)
		return
	}
	t.SetHealthy(component, "ok")
}

// SetHealthy marks a component as healthy.
func (t *Tracker) SetHealthy(component, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.entry(component)
	now := t.now()
	s.Healthy = true
	s.LastCheck = now
	s.LastSuccess = now
	s.LastError = nil
	s.Message = message
}

// SetUnhealthy marks a component as unhealthy.
func (t *Tracker) SetUnhealthy(component string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.entry(component)
	s.Healthy = false
	s.LastCheck = t.now()
	s.LastError = err
	s.Message = err.Error()
}

// entry returns the status for component, creating it. Caller holds mu.
func (t *Tracker) entry(component string) *Status {
	s, ok := t.components[component]
	if !ok {
		s = &Status{}
		t.components[component] = s
	}
	return s
}

// Get returns a copy of a component's status, or nil if it was never recorded.
func (t *Tracker) Get(component string) *Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.components[component]; ok {
		cp := *s
		return &cp
	}
	return nil
}

// Snapshot returns copies of all component statuses.
func (t *Tracker) Snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Status, len(t.components))
	for name, s := range t.components {
		out[name] = *s
	}
	return out
}

// Healthy reports whether every recorded component is healthy.
// A tracker with nothing recorded yet is healthy.
func (t *Tracker) Healthy() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, s := range t.components {
		if !s.Healthy {
			return false
		}
	}
	return true
}
