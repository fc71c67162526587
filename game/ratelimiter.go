package game

import (
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
)

const (
	loginAttemptInterval = 10 * time.Second
	loginAttemptMaxKeys  = 10000
)

// loginRateLimiter remembers failed login attempts per username. A username
// with a failure younger than the interval is refused without checking the
// password. Entries expire by themselves and the key count is bounded, so
// spraying unique usernames can't grow it without limit.
type loginRateLimiter struct {
	failures cache.Cache[string, time.Time]
}

func newLoginRateLimiter(interval time.Duration) *loginRateLimiter {
	if interval <= 0 {
		interval = loginAttemptInterval
	}
	return &loginRateLimiter{
		failures: cache.NewCache[string, time.Time]().WithMaxKeys(loginAttemptMaxKeys).WithTTL(interval),
	}
}

// allowed returns false while a recent failure for username exists.
func (l *loginRateLimiter) allowed(username string) bool {
	_, found := l.failures.Get(username)
	return !found
}

func (l *loginRateLimiter) recordFailure(username string) {
	l.failures.Set(username, time.Now(), 0)
}

func (l *loginRateLimiter) clearFailure(username string) {
	l.failures.Invalidate(username)
}
