package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// fakeClock drives a RateLimiter without sleeping.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestLimiter(t *testing.T, maxAttempts int) (*RateLimiter, *fakeClock) {
	t.Helper()
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     maxAttempts,
		WindowDuration:  10 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	rl.now = clock.Now
	return rl, clock
}

func TestRateLimiter_LocksAfterMaxFailures(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 1; i <= 3; i++ {
		if allowed, _ := rl.Allow("192.168.1.1", "desk"); !allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
		locked, _ := rl.RecordFailure("192.168.1.1", "desk")
		if locked != (i == 3) {
			t.Fatalf("attempt %d: locked = %v", i, locked)
		}
	}

	clock.Advance(10 * time.Minute)
	allowed, retryAfter := rl.Allow("192.168.1.1", "desk")
	if allowed {
		t.Fatal("locked pair should be blocked")
	}
	if retryAfter != 20*time.Minute {
		t.Errorf("retryAfter = %v, want 20m", retryAfter)
	}

	clock.Advance(20 * time.Minute)
	if allowed, _ := rl.Allow("192.168.1.1", "desk"); !allowed {
		t.Error("pair should be allowed once the lockout ends")
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	rl.RecordFailure("10.0.0.1", "desk")
	clock.Advance(6 * time.Minute)
	rl.RecordFailure("10.0.0.1", "desk")
	clock.Advance(6 * time.Minute)

	// The first failure left the window, so this one does not lock.
	if locked, _ := rl.RecordFailure("10.0.0.1", "desk"); locked {
		t.Error("failures outside the window should not count")
	}
}

func TestRateLimiter_SuccessResetsCounter(t *testing.T) {
	rl, _ := newTestLimiter(t, 3)

	rl.RecordFailure("192.168.1.1", "desk")
	rl.RecordFailure("192.168.1.1", "desk")
	rl.RecordSuccess("192.168.1.1", "desk")

	if locked, _ := rl.RecordFailure("192.168.1.1", "desk"); locked {
		t.Error("a successful login should clear earlier failures")
	}
}

func TestRateLimiter_PairsAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(t, 2)

	rl.RecordFailure("192.168.1.1", "desk")
	rl.RecordFailure("192.168.1.1", "desk")

	tests := []struct {
		ip, username string
		want         bool
	}{
		{"192.168.1.1", "desk", false},
		{"192.168.1.1", "archive", true},
		{"192.168.1.2", "desk", true},
	}
	for _, tt := range tests {
		if allowed, _ := rl.Allow(tt.ip, tt.username); allowed != tt.want {
			t.Errorf("Allow(%s, %s) = %v, want %v", tt.ip, tt.username, allowed, tt.want)
		}
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	rl.Stop()
	rl.Stop()
}

func TestRateLimiter_UsernameIsCaseInsensitive(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{MaxAttempts: 2, CleanupInterval: time.Hour})
	defer rl.Stop()

	rl.RecordFailure("10.0.0.2", "Desk")
	rl.RecordFailure("10.0.0.2", " desk ")

	if allowed, _ := rl.Allow("10.0.0.2", "DESK"); allowed {
		t.Error("case variants of a username should share one counter")
	}
}

func TestRateLimiter_CleanupDropsIdleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	start := time.Now()
	rl.now = func() time.Time { return start }
	rl.RecordFailure("10.0.0.3", "desk")

	rl.now = func() time.Time { return start.Add(2 * time.Minute) }
	rl.cleanup()

	rl.mu.Lock()
	remaining := len(rl.attempts)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected idle entry to be removed, %d left", remaining)
	}
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/api/books", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })
	router.POST("/api/borrow", func(c *gin.Context) { c.JSON(http.StatusBadRequest, gin.H{}) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/books", nil),
		httptest.NewRequest(http.MethodPost, "/api/borrow", nil),
		httptest.NewRequest(http.MethodGet, "/missing", nil),
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		h := rr.Header()
		if h.Get("X-Frame-Options") != "DENY" || h.Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s %s: framing/sniffing headers missing", req.Method, req.URL.Path)
		}
		if h.Get("Cache-Control") != "no-store" {
			t.Errorf("%s %s: patron data must not be cached, got %q", req.Method, req.URL.Path, h.Get("Cache-Control"))
		}
		if !strings.HasPrefix(h.Get("Content-Security-Policy"), "default-src 'none'") {
			t.Errorf("%s %s: unexpected CSP %q", req.Method, req.URL.Path, h.Get("Content-Security-Policy"))
		}
		if !strings.Contains(h.Get("Permissions-Policy"), "payment=()") {
			t.Errorf("%s %s: Permissions-Policy should disable payment APIs", req.Method, req.URL.Path)
		}
	}
}

func TestHSTSHeader(t *testing.T) {
	router := gin.New()
	router.Use(StrictTransportSecurityMiddleware(3600))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name  string
		proto string
		want  string
	}{
		{name: "plain http", want: ""},
		{name: "behind https proxy", proto: "https", want: "max-age=3600; includeSubDomains"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if got := rr.Header().Get("Strict-Transport-Security"); got != tt.want {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestUsernameValidation tests username format validation.
func TestUsernameValidation(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"ab", false},        // Too short
		{"abc", true},        // Minimum
		{"user123", true},    // Alphanumeric
		{"user_name", true},  // With underscore
		{"user-name", true},  // With hyphen
		{"user.name", false}, // Dot not allowed
		{"user@name", false}, // @ not allowed
		{"user name", false}, // Space not allowed
		{"a", false},         // Too short
		{"abcdefghij" + "abcdefghij" + "abcdefghij" + "abcdefghij" + "abcdefghij" + "abcdefghij" + "abcde", false}, // 65 chars, too long
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			result := usernamePattern.MatchString(tt.username)
			if result != tt.valid {
				t.Errorf("username %q validation = %v, want %v", tt.username, result, tt.valid)
			}
		})
	}
}
