package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/events"
)

func TestNewService_NoopWithoutTopic(t *testing.T) {
	t.Parallel()

	service := NewService("  ", 0)

	require.NoError(t, service.NotifyAlarmTriggered(context.Background(), "Wake up", time.Now()))
	require.NoError(t, service.TestNotification(context.Background()))
}

func TestNtfyService_PushesTriggeredAlarm(t *testing.T) {
	t.Parallel()

	var captured struct {
		method   string
		title    string
		tags     string
		priority string
		body     string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.title = r.Header.Get("Title")
		captured.tags = r.Header.Get("Tags")
		captured.priority = r.Header.Get("Priority")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		captured.body = string(body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(server.URL, 5*time.Second)

	at := time.Date(2024, time.January, 8, 7, 0, 0, 0, time.Local)
	require.NoError(t, service.NotifyAlarmTriggered(context.Background(), "Wake up", at))

	require.Equal(t, http.MethodPost, captured.method)
	require.Equal(t, "Alarm", captured.title)
	require.Equal(t, "alarm,triggered", captured.tags)
	require.Equal(t, "high", captured.priority)
	require.Equal(t, "⏰ Wake up (07:00)", captured.body)
}

func TestNtfyService_ReportsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic limit exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := NewService(server.URL, 5*time.Second)

	err := service.NotifyAlarmTriggered(context.Background(), "Wake up", time.Now())
	require.ErrorContains(t, err, "429")
	require.ErrorContains(t, err, "topic limit exceeded")
}

func TestConsume_ForwardsTriggeredEventsOnly(t *testing.T) {
	t.Parallel()

	pushed := make(chan string, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		pushed <- string(body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(server.URL, 5*time.Second)
	bus := events.NewBus()

	defer bus.Close()

	sub := bus.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})

	go func() {
		defer close(done)
		Consume(ctx, service, sub)
	}()

	bus.Publish(events.Event{Kind: events.KindAlarmsChanged, AlarmID: "ignored"})
	bus.Publish(events.Event{
		Kind:    events.KindAlarmTriggered,
		AlarmID: "a1",
		Label:   "Wake up",
		At:      time.Date(2024, time.January, 8, 7, 0, 0, 0, time.Local),
	})

	select {
	case body := <-pushed:
		require.Contains(t, body, "Wake up")
	case <-time.After(2 * time.Second):
		t.Fatal("expected a push for the triggered alarm")
	}

	sub.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after the subscription closed")
	}

	require.Empty(t, pushed)
}
