package auth

import (
	"strings"
	"sync"
	"time"
)

// RateLimiter throttles staff login attempts per client IP and username.
// Failures are counted over a sliding window; reaching MaxAttempts locks the
// pair out for LockoutDuration.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempts
	cfg      RateLimitConfig
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type loginAttempts struct {
	failures    []time.Time
	lockedUntil time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Failures before lockout (default: 5)
	WindowDuration  time.Duration // Sliding window for counting failures (default: 15m)
	LockoutDuration time.Duration // Lockout after MaxAttempts (default: 30m)
	CleanupInterval time.Duration // How often idle entries are dropped (default: 5m)
}

// DefaultRateLimitConfig returns the limits used when none are configured.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Zero fields fall back to DefaultRateLimitConfig.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = def.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		attempts: make(map[string]*loginAttempts),
		cfg:      cfg,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func attemptKey(ip, username string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(username))
}

// prune drops failures that fell out of the window and an expired lockout.
// Callers hold rl.mu.
func (rl *RateLimiter) prune(a *loginAttempts, now time.Time) {
	if !a.lockedUntil.IsZero() && !now.Before(a.lockedUntil) {
		a.lockedUntil = time.Time{}
		a.failures = a.failures[:0]
	}
	cutoff := now.Add(-rl.cfg.WindowDuration)
	kept := a.failures[:0]
	for _, at := range a.failures {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	a.failures = kept
}

// Allow reports whether a login attempt may proceed. When it may not,
// retryAfter is how long until the lockout ends.
func (rl *RateLimiter) Allow(ip, username string) (allowed bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	a, ok := rl.attempts[attemptKey(ip, username)]
	if !ok {
		return true, 0
	}

	now := rl.now()
	rl.prune(a, now)
	if !a.lockedUntil.IsZero() {
		return false, a.lockedUntil.Sub(now)
	}
	if len(a.failures) >= rl.cfg.MaxAttempts {
		return false, rl.cfg.LockoutDuration
	}
	return true, 0
}

// RecordFailure counts a failed login and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) (locked bool, retryAfter time.Duration) {
	key := attemptKey(ip, username)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	a, ok := rl.attempts[key]
	if !ok {
		a = &loginAttempts{}
		rl.attempts[key] = a
	}
	rl.prune(a, now)

	a.failures = append(a.failures, now)
	if len(a.failures) >= rl.cfg.MaxAttempts {
		a.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true, rl.cfg.LockoutDuration
	}
	return false, 0
}

// RecordSuccess forgets the failures of a pair after a successful login.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.attempts, attemptKey(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, a := range rl.attempts {
		rl.prune(a, now)
		if a.lockedUntil.IsZero() && len(a.failures) == 0 {
			delete(rl.attempts, key)
		}
	}
}
