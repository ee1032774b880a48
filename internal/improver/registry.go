package improver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cv-improver/internal/shared/telemetry"
)

// oneShotIdle is how long a session that saw a single request is kept.
// Clients that never send the cookie back leave only such sessions.
const oneShotIdle = 15 * time.Minute

// Registry owns the sessions of all browsers, keyed by session id.
type Registry struct {
	deps Deps
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session *Session

	hits atomic.Int64

	mu      sync.Mutex
	checked bool
}

// NewRegistry returns an empty registry.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the session for id, creating it in the default locale. Until
// one CheckAPIKey succeeds, every Get runs it again.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if !ok {
		e = &entry{session: NewSession(id, r.deps)}
		r.sessions[id] = e
	}
	r.mu.Unlock()

	var err error
	e.mu.Lock()
	if !e.checked {
		err = e.session.CheckAPIKey(ctx)
		e.checked = err == nil
	}
	e.mu.Unlock()
	e.hits.Add(1)
	e.session.touch(r.now())
	return e.session, err
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Prune drops sessions idle for longer than maxIdle, and sessions that saw
// a single request once they are idle for oneShotIdle. Stored credentials are
// kept; a returning browser gets a fresh session that finds its key again.
func (r *Registry) Prune(maxIdle time.Duration) int {
	now := r.now()
	cutoff := now.Add(-maxIdle)
	oneShotCutoff := now.Add(-min(maxIdle, oneShotIdle))
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.sessions {
		idle := e.session.idleSince()
		if idle.Before(cutoff) || (e.hits.Load() <= 1 && idle.Before(oneShotCutoff)) {
			e.session.stop()
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes idle sessions every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(maxIdle); n > 0 {
				telemetry.Info("sessions.pruned", map[string]any{"removed": n, "live": r.Len()})
			}
		}
	}
}
