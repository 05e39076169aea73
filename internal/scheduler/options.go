package scheduler

import "time"

// TimerHandle is the minimal surface of a runtime timer the scheduler needs.
// Stop is best effort: a callback may already be in flight when it returns,
// which is why fire validation relies on generations instead.
type TimerHandle interface {
	Stop() bool
}

// TimerFactory creates a timer that invokes fn after d elapses.
type TimerFactory func(d time.Duration, fn func()) TimerHandle

// stdTimerFactory backs timers with time.AfterFunc.
func stdTimerFactory(d time.Duration, fn func()) TimerHandle {
	return time.AfterFunc(d, fn)
}

// Option customizes scheduler construction.
type Option func(*Scheduler)

// WithNow replaces the clock used for occurrence computation. Used in tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTimerFactory replaces the timer implementation. Used in tests.
func WithTimerFactory(factory TimerFactory) Option {
	return func(s *Scheduler) {
		if factory != nil {
			s.newTimer = factory
		}
	}
}

// WithResyncInterval overrides how often armed timers are re-validated.
func WithResyncInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.resyncInterval = d
		}
	}
}

// WithFireTolerance overrides how far past its target an armed timer may
// drift before the resync loop fires it as missed.
func WithFireTolerance(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.fireTolerance = d
		}
	}
}
