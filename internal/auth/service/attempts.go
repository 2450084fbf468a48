package service

import "sync"

// AttemptCategory separates login failures from one-time-code failures so
// that one never locks the other.
type AttemptCategory string

const (
	CategoryLogin AttemptCategory = "login"
	CategoryCode  AttemptCategory = "code"
)

// DefaultMaxAttempts is the failure count at which an identifier is blocked.
const DefaultMaxAttempts = 5

type attemptKey struct {
	category   AttemptCategory
	identifier string
}

// AttemptLimiter counts consecutive failures per (category, identifier).
// A counter only goes up until a success removes it; there is no time
// based reset, so a blocked identifier stays blocked until it succeeds.
type AttemptLimiter struct {
	max int

	mu       sync.Mutex
	failures map[attemptKey]int
}

// NewAttemptLimiter blocks at max failures (DefaultMaxAttempts when max <= 0).
func NewAttemptLimiter(max int) *AttemptLimiter {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	return &AttemptLimiter{
		max:      max,
		failures: make(map[attemptKey]int),
	}
}

// RecordFailure increments the counter and returns the new count.
func (l *AttemptLimiter) RecordFailure(category AttemptCategory, identifier string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := attemptKey{category, identifier}
	l.failures[k]++
	return l.failures[k]
}

// RecordSuccess drops the counter entirely.
func (l *AttemptLimiter) RecordSuccess(category AttemptCategory, identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, attemptKey{category, identifier})
}

func (l *AttemptLimiter) IsBlocked(category AttemptCategory, identifier string) bool {
	return l.Failures(category, identifier) >= l.max
}

// Failures returns the current count, 0 when no counter exists.
func (l *AttemptLimiter) Failures(category AttemptCategory, identifier string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.failures[attemptKey{category, identifier}]
}

// MaxAttempts is the blocking threshold.
func (l *AttemptLimiter) MaxAttempts() int { return l.max }
