package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config describes a quota of Requests calls per Window. Unit is the
// granularity the spacing is rounded up to (one second when zero).
type Config struct {
	Requests int
	Window   time.Duration
	Unit     time.Duration
}

// Interval returns ceil(Window/Requests), rounded up to a whole Unit.
func (c Config) Interval() time.Duration {
	if c.Requests <= 0 || c.Window <= 0 {
		return 0
	}
	unit := c.Unit
	if unit <= 0 {
		unit = time.Second
	}
	units := (int64(c.Window) + int64(unit) - 1) / int64(unit)
	n := int64(c.Requests)
	return time.Duration((units+n-1)/n) * unit
}

// Limiter spaces outbound calls by a fixed interval. One Limiter is shared by
// every caller that draws from the same remote quota.
type Limiter struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	interval time.Duration
	calls    int64
}

func New(cfg Config) *Limiter {
	iv := cfg.Interval()
	l := &Limiter{interval: iv}
	if iv > 0 {
		l.lim = rate.NewLimiter(rate.Every(iv), 1)
	}
	return l
}

// Acquire blocks until the next call may be issued. It only fails when ctx
// is done first, or when its deadline would pass before the next slot; that
// case wraps context.DeadlineExceeded.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil || l.lim == nil {
		return ctx.Err()
	}
	if err := l.lim.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return nil
}

func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}

// Calls reports how many acquisitions have been granted.
func (l *Limiter) Calls() int64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
