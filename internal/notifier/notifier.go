package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oshokin/alarm-clock/internal/events"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/version"
)

// defaultTimeout bounds a push request when no timeout is configured.
const defaultTimeout = 10 * time.Second

// Service pushes alarm notifications to an external channel.
type Service interface {
	// NotifyAlarmTriggered announces a fired alarm.
	NotifyAlarmTriggered(ctx context.Context, label string, at time.Time) error
	// TestNotification sends a throwaway message to verify the channel.
	TestNotification(ctx context.Context) error
}

// NewService builds a push service backed by ntfy when a topic URL is
// configured. Without a topic, a noop implementation is returned so callers
// never need to branch.
func NewService(topic string, timeout time.Duration) Service {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return noopService{}
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Consume forwards triggered-alarm events from the subscription to the
// service until the context is canceled or the subscription closes.
// Errors are logged, never propagated: a push failure must not affect
// the engine.
func Consume(ctx context.Context, service Service, sub *events.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.C():
			if !ok {
				return
			}

			if event.Kind != events.KindAlarmTriggered {
				continue
			}

			if err := service.NotifyAlarmTriggered(ctx, event.Label, event.At); err != nil {
				logger.WarnKV(ctx, "Failed to push alarm notification",
					"alarm_id", event.AlarmID, "error", err)
			}
		}
	}
}

// payload describes a single push message.
type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

// ntfyService publishes messages to an ntfy topic over plain HTTP POST.
type ntfyService struct {
	endpoint string
	client   *http.Client
}

// NotifyAlarmTriggered implements Service.
func (n *ntfyService) NotifyAlarmTriggered(ctx context.Context, label string, at time.Time) error {
	label = strings.TrimSpace(label)

	return n.send(ctx, payload{
		title:    "Alarm",
		message:  fmt.Sprintf("⏰ %s (%s)", label, at.Format("15:04")),
		tags:     []string{"alarm", "triggered"},
		priority: "high",
	})
}

// TestNotification implements Service.
func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Alarm Clock - Test",
		message:  "Notification channel test",
		tags:     []string{"alarm", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}

	req.Header.Set("User-Agent", "alarm-clock/"+version.Version)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	if data.title != "" {
		req.Header.Set("Title", data.title)
	}

	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}

	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push notification: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

		return fmt.Errorf("push endpoint returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// noopService satisfies Service when no push channel is configured.
type noopService struct{}

func (noopService) NotifyAlarmTriggered(context.Context, string, time.Time) error { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
