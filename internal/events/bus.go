package events

import (
	"sync"
	"time"
)

// Kind discriminates the events produced by the engine.
type Kind string

const (
	// KindAlarmsChanged is published after any registry mutation.
	KindAlarmsChanged Kind = "alarms_changed"
	// KindAlarmTriggered is published exactly once per validated fire.
	KindAlarmTriggered Kind = "alarm_triggered"
)

// Event is the unit delivered to subscribers. The engine emits events without
// knowing who listens; transports (SSE, push notifications) subscribe.
type Event struct {
	// Kind identifies the event type.
	Kind Kind `json:"kind"`
	// AlarmID is set for alarm_triggered events.
	AlarmID string `json:"alarm_id,omitempty"`
	// Label is the label of the triggered alarm.
	Label string `json:"label,omitempty"`
	// At is when the event was published.
	At time.Time `json:"at"`
}

// defaultBufferSize is the per-subscription channel capacity.
const defaultBufferSize = 16

// Bus fans events out to an arbitrary number of subscribers.
//
// Delivery is non-blocking: a subscriber whose channel is full is dropped and
// its channel closed, so a stalled consumer can never back-pressure the
// scheduler. Such a consumer has to subscribe again.
type Bus struct {
	// mu protects the subscription set.
	mu sync.Mutex
	// subs holds the live subscriptions.
	subs map[*Subscription]struct{}
	// buffer is the channel capacity handed to new subscriptions.
	buffer int
	// closed marks the bus as shut down.
	closed bool
}

// Option customizes bus construction.
type Option func(*Bus)

// WithBufferSize overrides the per-subscription channel capacity.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// NewBus creates an empty event bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers a new subscriber and returns its subscription.
// A subscription obtained from a closed bus is already closed.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan Event, b.buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.ch)
		sub.done = true

		return sub
	}

	b.subs[sub] = struct{}{}

	return sub
}

// Publish delivers the event to every live subscriber without blocking.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			// Subscriber fell behind: evict it rather than stall.
			delete(b.subs, sub)
			close(sub.ch)
			sub.done = true
		}
	}
}

// Close shuts the bus down and closes every subscription channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
		sub.done = true
	}
}

// Subscription is one subscriber's view of the bus.
type Subscription struct {
	// bus is the owning bus, used for unsubscription.
	bus *Bus
	// ch carries the events; closed when the subscription ends.
	ch chan Event
	// done is set once ch has been closed (guarded by bus.mu).
	done bool
}

// C returns the channel events arrive on. The channel is closed when the
// subscriber is evicted for falling behind, the subscription is closed, or
// the bus shuts down.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close unsubscribes and closes the channel. It is safe to call twice.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	if s.done {
		return
	}

	delete(s.bus.subs, s)
	close(s.ch)
	s.done = true
}
