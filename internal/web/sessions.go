package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdulachik/blogfront/internal/metrics"
	"github.com/abdulachik/blogfront/internal/workflow"
)

// Registry maps browser session IDs to their workflow. Each browser gets one
// form instance.
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]*workflow.Session
	idle       time.Duration
	newSession func() *workflow.Session
}

// NewRegistry creates a registry. Sessions idle longer than idle are swept.
func NewRegistry(idle time.Duration, newSession func() *workflow.Session) *Registry {
	return &Registry{
		sessions:   make(map[string]*workflow.Session),
		idle:       idle,
		newSession: newSession,
	}
}

// Get returns the session for id. Unknown or empty IDs get a fresh session
// under a new ID; the returned ID is the one to hand back to the browser.
func (r *Registry) Get(id string) (string, *workflow.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok && id != "" {
		return id, s
	}

	id = uuid.NewString()
	s := r.newSession()
	r.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return id, s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle since before now-idle. Sessions with a call in
// flight are kept.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.State().Busy() {
			continue
		}
		if now.Sub(s.LastActive()) > r.idle {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				slog.Debug("swept idle sessions", "removed", n, "remaining", r.Len())
			}
		}
	}
}
