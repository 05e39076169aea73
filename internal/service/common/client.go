//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
)

// Client wraps the alarm server's HTTP API with convenience helpers.
type Client struct {
	// baseURL is the server root, e.g. "http://localhost:8090".
	baseURL string
	// httpClient issues the underlying requests.
	httpClient *http.Client

	// callTimeout is the default timeout for individual calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// ErrServerUnavailable is returned when the server reports a store failure.
	ErrServerUnavailable = errors.New("alarm server unavailable")
)

// New creates a client for the alarm server at the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errAddressRequired
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse server address: %w", err)
	}

	client := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateAlarmParams carries the fields of a new alarm.
type CreateAlarmParams struct {
	Label      string          `json:"label"`
	Hour       int             `json:"hour"`
	Minute     int             `json:"minute"`
	Enabled    bool            `json:"enabled"`
	Recurrence []alarm.Weekday `json:"recurrence"`
}

// UpdateAlarmParams carries optional field changes; nil fields stay untouched.
type UpdateAlarmParams struct {
	Label      *string          `json:"label,omitempty"`
	Hour       *int             `json:"hour,omitempty"`
	Minute     *int             `json:"minute,omitempty"`
	Enabled    *bool            `json:"enabled,omitempty"`
	Recurrence *[]alarm.Weekday `json:"recurrence,omitempty"`
}

// ListAlarms retrieves every alarm.
func (c *Client) ListAlarms(ctx context.Context) ([]*alarm.Alarm, error) {
	var response struct {
		Alarms []*alarm.Alarm `json:"alarms"`
	}

	if err := c.call(ctx, http.MethodGet, "/api/v1/alarms", nil, &response); err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return response.Alarms, nil
}

// GetAlarm retrieves a single alarm by id.
func (c *Client) GetAlarm(ctx context.Context, id string) (*alarm.Alarm, error) {
	var response alarm.Alarm

	if err := c.call(ctx, http.MethodGet, "/api/v1/alarms/"+url.PathEscape(id), nil, &response); err != nil {
		return nil, fmt.Errorf("get alarm: %w", err)
	}

	return &response, nil
}

// CreateAlarm adds a new alarm and returns the stored entity.
func (c *Client) CreateAlarm(ctx context.Context, params CreateAlarmParams) (*alarm.Alarm, error) {
	var response alarm.Alarm

	if err := c.call(ctx, http.MethodPost, "/api/v1/alarms", params, &response); err != nil {
		return nil, fmt.Errorf("create alarm: %w", err)
	}

	return &response, nil
}

// UpdateAlarm applies the provided field changes to an existing alarm.
func (c *Client) UpdateAlarm(ctx context.Context, id string, params UpdateAlarmParams) (*alarm.Alarm, error) {
	var response alarm.Alarm

	path := "/api/v1/alarms/" + url.PathEscape(id)
	if err := c.call(ctx, http.MethodPatch, path, params, &response); err != nil {
		return nil, fmt.Errorf("update alarm: %w", err)
	}

	return &response, nil
}

// DeleteAlarm removes an alarm.
func (c *Client) DeleteAlarm(ctx context.Context, id string) error {
	if err := c.call(ctx, http.MethodDelete, "/api/v1/alarms/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}

	return nil
}

// SetAlarmEnabled toggles an alarm.
func (c *Client) SetAlarmEnabled(ctx context.Context, id string, enabled bool) (*alarm.Alarm, error) {
	var response alarm.Alarm

	body := map[string]bool{"enabled": enabled}

	path := "/api/v1/alarms/" + url.PathEscape(id) + "/enabled"
	if err := c.call(ctx, http.MethodPut, path, body, &response); err != nil {
		return nil, fmt.Errorf("set alarm enabled: %w", err)
	}

	return &response, nil
}

// ClearAlarms deletes every alarm.
func (c *Client) ClearAlarms(ctx context.Context) error {
	if err := c.call(ctx, http.MethodDelete, "/api/v1/alarms", nil, nil); err != nil {
		return fmt.Errorf("clear alarms: %w", err)
	}

	return nil
}

// Snooze creates a one-time alarm the given number of minutes from now.
func (c *Client) Snooze(ctx context.Context, label string, minutes int) (*alarm.Alarm, error) {
	var response alarm.Alarm

	body := map[string]any{"label": label, "minutes": minutes}
	if err := c.call(ctx, http.MethodPost, "/api/v1/snooze", body, &response); err != nil {
		return nil, fmt.Errorf("snooze: %w", err)
	}

	return &response, nil
}

// Watch streams engine events until the context is canceled. The returned
// channel closes when the stream ends for any reason.
func (c *Client) Watch(ctx context.Context) (<-chan events.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/events", nil)
	if err != nil {
		return nil, fmt.Errorf("build watch request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")

	// The stream is long-lived: bypass the call timeout on purpose.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()

		return nil, fmt.Errorf("open event stream: unexpected status %d", resp.StatusCode)
	}

	stream := make(chan events.Event)

	go func() {
		defer close(stream)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			var event events.Event
			if jsonErr := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); jsonErr != nil {
				continue
			}

			select {
			case stream <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return stream, nil
}

// call issues a JSON request and decodes the response into target when the
// target is non-nil. API errors are translated back into domain errors.
func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// decodeAPIError maps the server's error body back onto domain errors so
// callers can use errors.Is the same way on both sides of the wire.
func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Error == "" {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	switch payload.Code {
	case "not_found":
		return fmt.Errorf("%w: %s", alarm.ErrNotFound, payload.Error)
	case "validation":
		return &alarm.ValidationError{Field: "request", Reason: payload.Error}
	case "persistence":
		return fmt.Errorf("%w: %s", ErrServerUnavailable, payload.Error)
	default:
		return errors.New(payload.Error)
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
