package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	repo "github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Scheduler is the surface the registry drives on every mutation. Apply and
// Remove complete (arm or disarm included) before the mutating call returns,
// so a deleted or edited alarm can never fire with its old definition.
type Scheduler interface {
	Apply(ctx context.Context, a *alarm.Alarm) error
	Remove(ctx context.Context, id string)
}

// Registry is the in-memory authoritative collection of alarms. It owns
// validation and CRUD semantics and is the only writer of the alarm store.
type Registry struct {
	// mu serializes mutations; operations are applied in caller order.
	mu sync.Mutex
	// repo persists the collection; every mutation saves before committing.
	repo repo.Repository
	// sched is reconciled with every committed change.
	sched Scheduler
	// bus receives AlarmsChanged after each mutation.
	bus *events.Bus
	// byID holds the live alarms.
	byID map[string]*alarm.Alarm
	// now supplies the current time for snooze; replaceable in tests.
	now func() time.Time
	// newID generates alarm identifiers; replaceable in tests.
	newID func() string
}

// AddParams carries the fields of a new alarm.
type AddParams struct {
	// Label is the alarm text; empty defaults to "Alarm".
	Label string
	// Hour of the day, 0..23.
	Hour int
	// Minute of the hour, 0..59.
	Minute int
	// Enabled arms the alarm immediately when true.
	Enabled bool
	// Recurrence lists the weekdays the alarm repeats on; empty means once.
	Recurrence []alarm.Weekday
}

// UpdateParams carries optional field changes; nil fields stay untouched.
type UpdateParams struct {
	// Label replaces the alarm text when set.
	Label *string
	// Hour replaces the hour when set.
	Hour *int
	// Minute replaces the minute when set.
	Minute *int
	// Enabled replaces the enabled flag when set.
	Enabled *bool
	// Recurrence replaces the weekday set when set.
	Recurrence *[]alarm.Weekday
}

// Option customizes registry construction.
type Option func(*Registry)

// WithNow replaces the clock used for snooze computation. Used in tests.
func WithNow(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator replaces the id source. Used in tests.
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// New creates a registry backed by the provided store. The store is loaded
// once; a missing or corrupt store starts the registry empty (the corruption
// is logged, never fatal). Timers are not armed yet: call ArmAll once the
// scheduler is bound and running.
func New(ctx context.Context, repository repo.Repository, sched Scheduler, bus *events.Bus, opts ...Option) (*Registry, error) {
	r := &Registry{
		repo:  repository,
		sched: sched,
		bus:   bus,
		byID:  make(map[string]*alarm.Alarm),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(r)
	}

	loaded, err := repository.Load(ctx)

	switch {
	case err == nil:
	case errors.Is(err, repo.ErrNotFound):
		// First run: start empty.
	case errors.Is(err, repo.ErrCorrupted):
		logger.WarnKV(ctx, "Alarm store is corrupted, starting empty", "error", err)
	default:
		return nil, &alarm.PersistenceError{Op: "load", Err: err}
	}

	for _, a := range loaded {
		if a == nil || a.ID == "" {
			continue
		}

		if validationErr := a.Validate(); validationErr != nil {
			logger.WarnKV(ctx, "Dropping invalid stored alarm",
				"alarm_id", a.ID, "error", validationErr)

			continue
		}

		a.Normalize()
		r.byID[a.ID] = a
	}

	logger.InfoKV(ctx, "Alarm registry loaded", "alarms", len(r.byID))

	return r, nil
}

// ArmAll reconciles the scheduler with every loaded alarm. Called at startup.
func (r *Registry) ArmAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.byID {
		if err := r.sched.Apply(ctx, a.Clone()); err != nil {
			return fmt.Errorf("arm alarm %s: %w", a.ID, err)
		}
	}

	return nil
}

// Add validates and persists a new alarm, arms it when enabled, and returns
// the stored entity.
func (r *Registry) Add(ctx context.Context, params AddParams) (*alarm.Alarm, error) {
	a := &alarm.Alarm{
		ID:         r.newID(),
		Label:      params.Label,
		Hour:       params.Hour,
		Minute:     params.Minute,
		Enabled:    params.Enabled,
		Recurrence: params.Recurrence,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	a.Normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.persistLocked(ctx, withAlarm(r.snapshotLocked(), a)); err != nil {
		return nil, err
	}

	r.byID[a.ID] = a

	if err := r.sched.Apply(ctx, a.Clone()); err != nil {
		return nil, err
	}

	r.publishChanged(ctx, "add", a.ID)

	return a.Clone(), nil
}

// Update applies the provided field changes to an existing alarm.
func (r *Registry) Update(ctx context.Context, id string, params UpdateParams) (*alarm.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, alarm.ErrNotFound
	}

	updated := current.Clone()

	if params.Label != nil {
		updated.Label = *params.Label
	}

	if params.Hour != nil {
		updated.Hour = *params.Hour
	}

	if params.Minute != nil {
		updated.Minute = *params.Minute
	}

	if params.Enabled != nil {
		updated.Enabled = *params.Enabled
	}

	if params.Recurrence != nil {
		updated.Recurrence = *params.Recurrence
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	updated.Normalize()

	if err := r.persistLocked(ctx, withAlarm(r.snapshotLocked(), updated)); err != nil {
		return nil, err
	}

	r.byID[id] = updated

	if err := r.sched.Apply(ctx, updated.Clone()); err != nil {
		return nil, err
	}

	r.publishChanged(ctx, "update", id)

	return updated.Clone(), nil
}

// Delete removes the alarm and disarms its timer before returning. Deleting
// the same id twice fails with ErrNotFound.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return alarm.ErrNotFound
	}

	if err := r.persistLocked(ctx, withoutAlarm(r.snapshotLocked(), id)); err != nil {
		return err
	}

	delete(r.byID, id)
	r.sched.Remove(ctx, id)
	r.publishChanged(ctx, "delete", id)

	return nil
}

// SetEnabled toggles the alarm. The operation is idempotent: setting the
// current value succeeds without persisting or emitting anything.
func (r *Registry) SetEnabled(ctx context.Context, id string, enabled bool) (*alarm.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, alarm.ErrNotFound
	}

	if current.Enabled == enabled {
		return current.Clone(), nil
	}

	updated := current.Clone()
	updated.Enabled = enabled

	if err := r.persistLocked(ctx, withAlarm(r.snapshotLocked(), updated)); err != nil {
		return nil, err
	}

	r.byID[id] = updated

	if err := r.sched.Apply(ctx, updated.Clone()); err != nil {
		return nil, err
	}

	r.publishChanged(ctx, "set_enabled", id)

	return updated.Clone(), nil
}

// DisableFired is the scheduler's callback for a fired one-time alarm.
// A recurring alarm is never disabled this way; only user action does that.
func (r *Registry) DisableFired(ctx context.Context, id string) error {
	r.mu.Lock()

	current, ok := r.byID[id]
	if ok && current.IsRecurring() {
		r.mu.Unlock()

		return fmt.Errorf("%w: fired auto-disable requested for recurring alarm %s",
			alarm.ErrInvariantViolation, id)
	}

	r.mu.Unlock()

	_, err := r.SetEnabled(ctx, id, false)
	if errors.Is(err, alarm.ErrNotFound) {
		// Deleted between the fire and the disable: nothing to do.
		return nil
	}

	return err
}

// ClearAll removes every alarm and disarms every timer. A no-op on an empty
// registry still succeeds and still reports a change.
func (r *Registry) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.persistLocked(ctx, []*alarm.Alarm{}); err != nil {
		return err
	}

	for id := range r.byID {
		delete(r.byID, id)
		r.sched.Remove(ctx, id)
	}

	r.publishChanged(ctx, "clear_all", "")

	return nil
}

// Snooze creates a one-time enabled alarm at now+d. Minute overflow wraps
// into the hour and the hour wraps past midnight; the one-time occurrence
// branch handles the date rollover.
func (r *Registry) Snooze(ctx context.Context, label string, d time.Duration) (*alarm.Alarm, error) {
	if d <= 0 {
		return nil, &alarm.ValidationError{Field: "duration", Reason: "must be positive"}
	}

	if label == "" {
		label = "Snooze"
	}

	target := r.now().Add(d)

	return r.Add(ctx, AddParams{
		Label:   label,
		Hour:    target.Hour(),
		Minute:  target.Minute(),
		Enabled: true,
	})
}

// Get returns a copy of the alarm or ErrNotFound.
func (r *Registry) Get(_ context.Context, id string) (*alarm.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, alarm.ErrNotFound
	}

	return a.Clone(), nil
}

// List returns copies of every alarm in a stable order (hour, minute, id).
func (r *Registry) List(_ context.Context) []*alarm.Alarm {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

// snapshotLocked clones the collection sorted by (hour, minute, id).
// Caller must hold mu.
func (r *Registry) snapshotLocked() []*alarm.Alarm {
	alarms := make([]*alarm.Alarm, 0, len(r.byID))
	for _, a := range r.byID {
		alarms = append(alarms, a.Clone())
	}

	sort.Slice(alarms, func(i, j int) bool {
		if alarms[i].Hour != alarms[j].Hour {
			return alarms[i].Hour < alarms[j].Hour
		}

		if alarms[i].Minute != alarms[j].Minute {
			return alarms[i].Minute < alarms[j].Minute
		}

		return alarms[i].ID < alarms[j].ID
	})

	return alarms
}

// persistLocked saves the candidate collection. On failure the in-memory
// state is untouched, so registry and store never diverge. Caller must hold mu.
func (r *Registry) persistLocked(ctx context.Context, alarms []*alarm.Alarm) error {
	if err := r.repo.Save(ctx, alarms); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms", "error", err)

		return &alarm.PersistenceError{Op: "save", Err: err}
	}

	return nil
}

// publishChanged logs the mutation and notifies bus subscribers.
func (r *Registry) publishChanged(ctx context.Context, op, id string) {
	logger.InfoKV(ctx, "Alarms changed", "op", op, "alarm_id", id, "total", len(r.byID))

	r.bus.Publish(events.Event{Kind: events.KindAlarmsChanged, AlarmID: id})
}

// withAlarm returns the snapshot with a replaced or appended.
func withAlarm(snapshot []*alarm.Alarm, a *alarm.Alarm) []*alarm.Alarm {
	for i, existing := range snapshot {
		if existing.ID == a.ID {
			snapshot[i] = a.Clone()

			return snapshot
		}
	}

	return append(snapshot, a.Clone())
}

// withoutAlarm returns the snapshot with id removed.
func withoutAlarm(snapshot []*alarm.Alarm, id string) []*alarm.Alarm {
	filtered := snapshot[:0]

	for _, existing := range snapshot {
		if existing.ID != id {
			filtered = append(filtered, existing)
		}
	}

	return filtered
}

// Interface conformance for the scheduler callback.
var _ scheduler.Registry = (*Registry)(nil)
