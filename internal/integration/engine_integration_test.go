package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/registry"
	repository "github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// manualTimer is a hand-driven timer so tests control exactly when it fires.
type manualTimer struct {
	fn      func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	already := m.stopped
	m.stopped = true

	return !already
}

// manualTimers collects every timer the scheduler creates.
type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (m *manualTimers) factory(_ time.Duration, fn func()) scheduler.TimerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	timer := &manualTimer{fn: fn}
	m.timers = append(m.timers, timer)

	return timer
}

func (m *manualTimers) latest(t *testing.T) *manualTimer {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.timers)

	return m.timers[len(m.timers)-1]
}

// TestEngine_OneTimeFirePersistsDisabled wires the real registry, scheduler
// and file store together and checks a fired one-time alarm ends up disabled
// both in memory and on disk.
func TestEngine_OneTimeFirePersistsDisabled(t *testing.T) {
	t.Parallel()

	storePath := filepath.Join(t.TempDir(), "alarms.json")
	repo := repository.NewFileRepository(storePath)
	bus := events.NewBus()

	defer bus.Close()

	now := time.Date(2024, time.January, 3, 8, 0, 0, 0, time.Local)
	timers := &manualTimers{}

	sched := scheduler.New(bus,
		scheduler.WithNow(func() time.Time { return now }),
		scheduler.WithTimerFactory(timers.factory))

	ctx := context.Background()

	reg, err := registry.New(ctx, repo, sched, bus)
	require.NoError(t, err)

	sched.BindRegistry(reg)

	sub := bus.Subscribe()
	defer sub.Close()

	created, err := reg.Add(ctx, registry.AddParams{
		Label:   "Tea",
		Hour:    8,
		Minute:  30,
		Enabled: true,
	})
	require.NoError(t, err)

	// Creation arms a timer and announces the change.
	target, armed := sched.ArmedTarget(created.ID)
	require.True(t, armed)
	require.Equal(t, time.Date(2024, time.January, 3, 8, 30, 0, 0, time.Local), target)

	requireEvent(t, sub, events.KindAlarmsChanged)

	// Drive the armed timer by hand.
	timers.latest(t).fn()

	requireEvent(t, sub, events.KindAlarmTriggered)
	requireEvent(t, sub, events.KindAlarmsChanged)

	// The one-time alarm is disabled and disarmed once it fires.
	fired, err := reg.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, fired.Enabled)

	_, armed = sched.ArmedTarget(created.ID)
	require.False(t, armed)

	// The disabled state reached the store file as well.
	raw, err := os.ReadFile(storePath)
	require.NoError(t, err)

	var document struct {
		Alarms []*alarm.Alarm `json:"alarms"`
	}

	require.NoError(t, json.Unmarshal(raw, &document))
	require.Len(t, document.Alarms, 1)
	require.False(t, document.Alarms[0].Enabled)
}

// TestEngine_RecurringFireRearms checks a recurring alarm stays enabled and
// gets a fresh timer for the next weekday occurrence after it fires.
func TestEngine_RecurringFireRearms(t *testing.T) {
	t.Parallel()

	storePath := filepath.Join(t.TempDir(), "alarms.json")
	repo := repository.NewFileRepository(storePath)
	bus := events.NewBus()

	defer bus.Close()

	// Wednesday morning.
	now := time.Date(2024, time.January, 3, 6, 0, 0, 0, time.Local)

	var mu sync.Mutex

	timers := &manualTimers{}

	sched := scheduler.New(bus,
		scheduler.WithNow(func() time.Time {
			mu.Lock()
			defer mu.Unlock()

			return now
		}),
		scheduler.WithTimerFactory(timers.factory))

	ctx := context.Background()

	reg, err := registry.New(ctx, repo, sched, bus)
	require.NoError(t, err)

	sched.BindRegistry(reg)

	created, err := reg.Add(ctx, registry.AddParams{
		Label:      "Standup",
		Hour:       7,
		Minute:     0,
		Enabled:    true,
		Recurrence: []alarm.Weekday{alarm.Wednesday},
	})
	require.NoError(t, err)

	target, armed := sched.ArmedTarget(created.ID)
	require.True(t, armed)
	require.Equal(t, time.Date(2024, time.January, 3, 7, 0, 0, 0, time.Local), target)

	// Advance the clock to the fire instant and trigger the timer.
	mu.Lock()
	now = target
	mu.Unlock()

	timers.latest(t).fn()

	// Still enabled, re-armed for next Wednesday.
	after, err := reg.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, after.Enabled)

	next, armed := sched.ArmedTarget(created.ID)
	require.True(t, armed)
	require.Equal(t, time.Date(2024, time.January, 10, 7, 0, 0, 0, time.Local), next)
}

// requireEvent pulls the next event off the subscription and checks its kind.
func requireEvent(t *testing.T, sub *events.Subscription, kind events.Kind) {
	t.Helper()

	select {
	case event, ok := <-sub.C():
		require.True(t, ok)
		require.Equal(t, kind, event.Kind)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", kind)
	}
}
