package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/occurrence"
)

// Registry is the narrow view of the alarm registry the scheduler calls back
// into when a one-time alarm fires. It is bound after construction because
// the registry itself depends on the scheduler.
type Registry interface {
	DisableFired(ctx context.Context, id string) error
}

// armedTimer pairs an alarm snapshot with a live timer and the generation it
// was armed with. Owned exclusively by the scheduler; at most one exists per
// alarm id at any instant.
type armedTimer struct {
	// alarm is a deep copy of the alarm definition at arming time.
	alarm *alarm.Alarm
	// generation stamps the timer; a fire callback carrying a stale
	// generation is a silent no-op.
	generation uint64
	// target is the instant the timer is due to fire.
	target time.Time
	// timer is the underlying runtime timer handle.
	timer TimerHandle
}

// Scheduler maintains the invariant that an armed timer exists for an alarm
// if and only if the alarm is currently enabled, and fires AlarmTriggered
// exactly once per occurrence.
//
// All state transitions (arm, disarm, fire validation) are serialized under a
// single mutex, so two mutations for the same alarm id never interleave.
// Cancellation is race-free: stopping a timer is best effort, but bumping the
// generation neutralizes any callback that was already in flight.
type Scheduler struct {
	// mu serializes every state transition.
	mu sync.Mutex
	// armed maps alarm id to its single armed timer.
	armed map[string]*armedTimer
	// generations holds the current generation per alarm id.
	generations map[string]uint64
	// registry handles the one-time auto-disable after a fire.
	registry Registry
	// bus receives AlarmTriggered events.
	bus *events.Bus
	// runCtx carries the logger for timer-initiated work.
	runCtx context.Context
	// now supplies the current time; replaceable in tests.
	now func() time.Time
	// newTimer creates timers; replaceable in tests.
	newTimer TimerFactory
	// resyncInterval is how often armed targets are re-validated.
	resyncInterval time.Duration
	// fireTolerance is how far past its target an armed timer may drift
	// before the resync loop treats it as a missed fire.
	fireTolerance time.Duration
}

const (
	// defaultResyncInterval re-validates armed timers twice a minute.
	defaultResyncInterval = 30 * time.Second

	// defaultFireTolerance allows normal timer jitter before a fire counts
	// as missed.
	defaultFireTolerance = 5 * time.Second
)

// New creates a scheduler publishing AlarmTriggered events to the provided bus.
func New(bus *events.Bus, opts ...Option) *Scheduler {
	s := &Scheduler{
		armed:          make(map[string]*armedTimer),
		generations:    make(map[string]uint64),
		bus:            bus,
		runCtx:         context.Background(),
		now:            time.Now,
		newTimer:       stdTimerFactory,
		resyncInterval: defaultResyncInterval,
		fireTolerance:  defaultFireTolerance,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// BindRegistry attaches the registry used to disable one-time alarms after
// they fire. Must be called before the first timer can fire.
func (s *Scheduler) BindRegistry(registry Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = registry
}

// Apply reconciles the scheduler with the alarm's current definition: the
// previous timer (if any) is canceled and a fresh one is armed when the alarm
// is enabled. Any in-flight fire callback for the old timer is invalidated by
// the generation bump before this method returns.
func (s *Scheduler) Apply(ctx context.Context, a *alarm.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	generation := s.disarmLocked(a.ID)

	if !a.Enabled {
		logger.DebugKV(ctx, "Alarm left disarmed", "alarm_id", a.ID)

		return nil
	}

	return s.armLocked(ctx, a, generation)
}

// Remove cancels the alarm's timer, if any. Used when the alarm is deleted.
func (s *Scheduler) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked(id)

	logger.DebugKV(ctx, "Alarm disarmed", "alarm_id", id)
}

// Run re-validates armed timers until the context is canceled, then disarms
// everything. Re-validation catches timers whose targets slipped into the
// past while the process was suspended: such missed fires are executed
// immediately instead of being dropped.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	ticker := time.NewTicker(s.resyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.disarmAll()
			return
		case <-ticker.C:
			s.resync(ctx)
		}
	}
}

// ArmedTarget returns the instant the alarm's timer is due to fire.
func (s *Scheduler) ArmedTarget(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.armed[id]
	if !ok {
		return time.Time{}, false
	}

	return entry.target, true
}

// ArmedCount returns the number of currently armed timers.
func (s *Scheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.armed)
}

// disarmLocked cancels the current timer for id (best effort) and bumps the
// generation so a concurrently executing fire callback becomes a no-op.
// Returns the new generation. Caller must hold mu.
func (s *Scheduler) disarmLocked(id string) uint64 {
	generation := s.generations[id] + 1
	s.generations[id] = generation

	if entry, ok := s.armed[id]; ok {
		entry.timer.Stop()
		delete(s.armed, id)
	}

	return generation
}

// armLocked computes the next occurrence and arms a timer stamped with the
// provided generation. Caller must hold mu.
func (s *Scheduler) armLocked(ctx context.Context, a *alarm.Alarm, generation uint64) error {
	if _, ok := s.armed[a.ID]; ok {
		// disarmLocked ran just before us, so a second entry here means the
		// single-timer-per-alarm invariant is broken.
		logger.ErrorKV(ctx, "Duplicate armed timer", "alarm_id", a.ID)

		return alarm.ErrInvariantViolation
	}

	now := s.now()

	target, err := occurrence.Next(a, now)
	if err != nil {
		logger.ErrorKV(ctx, "Next occurrence computation failed",
			"alarm_id", a.ID, "error", err)

		return err
	}

	entry := &armedTimer{
		alarm:      a.Clone(),
		generation: generation,
		target:     target,
	}
	entry.timer = s.newTimer(target.Sub(now), func() {
		s.fire(s.fireContext(), a.ID, generation)
	})

	s.armed[a.ID] = entry

	logger.DebugKV(ctx, "Alarm armed",
		"alarm_id", a.ID, "target", target, "generation", generation)

	return nil
}

// fire is the single fire path for both runtime timers and the resync loop.
// It validates the captured generation under the lock, consumes the armed
// entry, publishes the trigger event and re-arms or auto-disables.
func (s *Scheduler) fire(ctx context.Context, id string, generation uint64) {
	s.mu.Lock()

	entry, ok := s.armed[id]
	if !ok || entry.generation != generation || s.generations[id] != generation {
		s.mu.Unlock()
		logger.DebugKV(ctx, "Stale timer fire dropped",
			"alarm_id", id, "generation", generation)

		return
	}

	// Consume the occurrence: every generation fires at most once.
	delete(s.armed, id)

	next := generation + 1
	s.generations[id] = next

	fired := entry.alarm

	if fired.IsRecurring() {
		if err := s.armLocked(ctx, fired, next); err != nil {
			logger.ErrorKV(ctx, "Recurring alarm could not be re-armed",
				"alarm_id", id, "error", err)
		}
	}

	s.mu.Unlock()

	logger.InfoKV(ctx, "Alarm triggered",
		"alarm_id", id, "label", fired.Label, "target", entry.target)

	s.bus.Publish(events.Event{
		Kind:    events.KindAlarmTriggered,
		AlarmID: id,
		Label:   fired.Label,
	})

	if fired.IsRecurring() {
		return
	}

	if s.registry == nil {
		logger.ErrorKV(ctx, "No registry bound, one-time alarm stays enabled", "alarm_id", id)

		return
	}

	if err := s.registry.DisableFired(ctx, id); err != nil {
		logger.ErrorKV(ctx, "Failed to disable fired one-time alarm",
			"alarm_id", id, "error", err)
	}
}

// resync walks the armed timers and executes the fire path for any whose
// target is further in the past than the tolerance. The generation check in
// fire deduplicates against the runtime timer delivering late.
func (s *Scheduler) resync(ctx context.Context) {
	now := s.now()

	type overdue struct {
		id         string
		generation uint64
		target     time.Time
	}

	s.mu.Lock()

	var missed []overdue

	for id, entry := range s.armed {
		if now.Sub(entry.target) > s.fireTolerance {
			missed = append(missed, overdue{id: id, generation: entry.generation, target: entry.target})
		}
	}

	s.mu.Unlock()

	for _, m := range missed {
		logger.WarnKV(ctx, "Missed fire detected, triggering now",
			"alarm_id", m.id, "target", m.target)
		s.fire(ctx, m.id, m.generation)
	}
}

// disarmAll cancels every armed timer, e.g. at shutdown.
func (s *Scheduler) disarmAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.armed {
		s.disarmLocked(id)
	}
}

// fireContext returns the context timer callbacks should log against.
func (s *Scheduler) fireContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runCtx == nil {
		return context.Background()
	}

	return s.runCtx
}
