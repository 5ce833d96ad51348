package core

// build_limiter.go bounds how many order-list builds run at once.
//
// A build holds two workbooks and the rendered output in memory, so the
// limiter caps parallel builds. When every slot is taken a caller waits up to
// maxWait, then gets ErrTooManyBuilds. WaitForDrain lets shutdown finish the
// builds already running.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyBuilds is returned when no build slot frees up within the wait
// timeout.
var ErrTooManyBuilds = errors.New("too many concurrent builds, please try again later")

const (
	DefaultMaxConcurrentBuilds = 4
	DefaultMaxWaitTime         = 30 * time.Second
)

// BuildLimiter is a counting semaphore over build slots.
type BuildLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewBuildLimiter allows at most maxConcurrent builds. Non-positive
// arguments fall back to the defaults.
func NewBuildLimiter(maxConcurrent int, maxWait time.Duration) *BuildLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentBuilds
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &BuildLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire blocks until a slot is free, ctx ends, or maxWait passes.
// Every successful Acquire must be paired with Release.
func (l *BuildLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyBuilds
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *BuildLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *BuildLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

func (l *BuildLimiter) ActiveCount() int {
	return int(l.active.Load())
}

func (l *BuildLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

func (l *BuildLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no build is running or ctx ends.
func (l *BuildLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.ActiveCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a point-in-time view of the limiter for /api/status.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *BuildLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
