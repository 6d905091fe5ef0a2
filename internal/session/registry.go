// Package session keeps per-browser-session seat-map state between
// requests. State is memory-only: losing it means the user re-enters seat
// selection, which is the degraded path the flow already supports.
package session

import (
	"log/slog"
	"sync"
	"time"

	"boxoffice/internal/seatmap"
)

type Config struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type entry struct {
	state    *seatmap.State
	lastSeen time.Time
}

// Registry maps (session, screening) to seat-map state and evicts entries
// that have been idle past the TTL.
type Registry struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]map[int64]*entry
	ticker   *time.Ticker
	done     chan struct{}
}

func NewRegistry(cfg Config) *Registry {
	if cfg.IdleTTL == 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Registry{
		cfg:      cfg,
		sessions: make(map[string]map[int64]*entry),
		done:     make(chan struct{}),
	}
}

// Update runs fn against the state for the given session and screening,
// serialized with every other access. Returns false and does not call fn if
// no state exists.
func (r *Registry) Update(sessionID string, screeningID int64, fn func(*seatmap.State)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	screenings, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	e, ok := screenings[screeningID]
	if !ok {
		return false
	}

	e.lastSeen = time.Now()
	fn(e.state)
	return true
}

// Put stores a freshly built state
func (r *Registry) Put(sessionID string, state *seatmap.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	screenings, ok := r.sessions[sessionID]
	if !ok {
		screenings = make(map[int64]*entry)
		r.sessions[sessionID] = screenings
	}
	screenings[state.ScreeningID] = &entry{state: state, lastSeen: time.Now()}
}

// Drop removes the state for one screening, e.g. after a confirmed booking
func (r *Registry) Drop(sessionID string, screeningID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if screenings, ok := r.sessions[sessionID]; ok {
		delete(screenings, screeningID)
		if len(screenings) == 0 {
			delete(r.sessions, sessionID)
		}
	}
}

// Start begins the background sweep that evicts idle states
func (r *Registry) Start() {
	slog.Info("Starting session registry sweeper",
		"idle_ttl", r.cfg.IdleTTL,
		"sweep_interval", r.cfg.SweepInterval)

	r.ticker = time.NewTicker(r.cfg.SweepInterval)

	go func() {
		for {
			select {
			case <-r.ticker.C:
				r.sweep()
			case <-r.done:
				slog.Info("Session registry sweeper stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the sweeper
func (r *Registry) Stop() {
	if r.ticker != nil {
		r.ticker.Stop()
	}
	close(r.done)
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for sessionID, screenings := range r.sessions {
		for screeningID, e := range screenings {
			if e.lastSeen.Before(cutoff) {
				delete(screenings, screeningID)
				evicted++
			}
		}
		if len(screenings) == 0 {
			delete(r.sessions, sessionID)
		}
	}

	if evicted > 0 {
		slog.Debug("Evicted idle seat-map states", "count", evicted)
	}
}
