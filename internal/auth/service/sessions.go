package service

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the registry drops expired sessions on
// its own.
const DefaultSweepInterval = time.Minute

// SessionRegistry tracks which users hold a live session, keyed by user id.
// It only feeds the active-user count and plays no part in authorization.
type SessionRegistry struct {
	Logger   *slog.Logger
	Interval time.Duration

	// Now is the clock used by sweeps. Defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	sessions map[int64]time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	started   chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSessionRegistry creates a registry that sweeps every interval once
// started. A non-positive interval defaults to DefaultSweepInterval.
func NewSessionRegistry(logger *slog.Logger, interval time.Duration) *SessionRegistry {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &SessionRegistry{
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		sessions: make(map[int64]time.Time),
		started:  make(chan struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (r *SessionRegistry) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// RegisterLogin upserts the session expiry for userID.
func (r *SessionRegistry) RegisterLogin(userID int64, expiration time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = expiration
}

// RegisterLogout removes userID. Removing an absent user is a no-op.
func (r *SessionRegistry) RegisterLogout(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// ActiveCount sweeps first so expired entries are never counted.
func (r *SessionRegistry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	sweepExpired(r.sessions, r.now())
	return len(r.sessions)
}

// Tracked returns the number of entries held, including expired ones the
// sweeper has not reached yet.
func (r *SessionRegistry) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// SweepExpired removes every session whose expiry is at or before now and
// returns how many were removed.
func (r *SessionRegistry) SweepExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return sweepExpired(r.sessions, r.now())
}

func sweepExpired(sessions map[int64]time.Time, now time.Time) int {
	removed := 0
	for id, exp := range sessions {
		if !exp.After(now) {
			delete(sessions, id)
			removed++
		}
	}
	return removed
}

// Start runs the periodic sweep in the background. Calling it more than
// once has no effect.
func (r *SessionRegistry) Start() {
	r.startOnce.Do(func() {
		close(r.started)
		go r.run()
		r.logger().Info("session registry started", "interval", r.Interval)
	})
}

// Stop ends the sweeper and waits for it to exit. Safe to call without
// Start and more than once.
func (r *SessionRegistry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)

		select {
		case <-r.started:
			<-r.doneCh
			r.logger().Info("session registry stopped")
		default:
		}
	})
}

func (r *SessionRegistry) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.SweepExpired(); n > 0 {
				r.logger().Debug("swept expired sessions", "removed", n)
			}
		case <-r.stopCh:
			return
		}
	}
}

func (r *SessionRegistry) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
