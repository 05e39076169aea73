package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"text/tabwriter"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures the control commands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides the server address from config when specified.
	ServerAddress string
}

// AddOptions carries the fields of a new alarm as given on the command line.
type AddOptions struct {
	// Label is the alarm text.
	Label string
	// Time is the clock time as "HH:MM".
	Time string
	// Repeat is the recurrence spec for ParseRecurrence.
	Repeat string
	// Disabled creates the alarm switched off.
	Disabled bool
}

// UpdateOptions carries optional field changes; empty strings mean unchanged.
type UpdateOptions struct {
	// Label replaces the alarm text when set.
	Label *string
	// Time replaces the clock time when non-empty.
	Time string
	// Repeat replaces the recurrence when non-empty ("once" clears it).
	Repeat string
}

// connect loads settings and opens a client against the configured server.
func connect(_ context.Context, opts *Options) (*common.Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	serverAddress := opts.ServerAddress
	if serverAddress == "" {
		serverAddress = baseURLFromListenAddress(cfg.ListenAddress)
	}

	return common.New(serverAddress, common.WithCallTimeout(cfg.Timeout))
}

// baseURLFromListenAddress derives a client base URL from the server's
// configured listen address. A port-only address like ":8090" points the
// client at localhost.
func baseURLFromListenAddress(listenAddress string) string {
	host, port, err := net.SplitHostPort(listenAddress)
	if err != nil {
		return "http://localhost:8090"
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	return "http://" + net.JoinHostPort(host, port)
}

// List prints every alarm as a table.
func List(ctx context.Context, opts *Options, out io.Writer) error {
	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	alarms, err := client.ListAlarms(ctx)
	if err != nil {
		return err
	}

	if len(alarms) == 0 {
		_, _ = fmt.Fprintln(out, "no alarms")

		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(writer, "ID\tTIME\tLABEL\tREPEAT\tENABLED")

	for _, a := range alarms {
		_, _ = fmt.Fprintf(writer, "%s\t%02d:%02d\t%s\t%s\t%t\n",
			a.ID, a.Hour, a.Minute, a.Label, FormatRecurrence(a.Recurrence), a.Enabled)
	}

	return writer.Flush()
}

// Get prints a single alarm.
func Get(ctx context.Context, opts *Options, out io.Writer, id string) error {
	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	found, err := client.GetAlarm(ctx, id)
	if err != nil {
		return err
	}

	printAlarm(out, found)

	return nil
}

// Add creates a new alarm.
func Add(ctx context.Context, opts *Options, out io.Writer, addOpts *AddOptions) error {
	hour, minute, err := ParseClock(addOpts.Time)
	if err != nil {
		return err
	}

	recurrence, err := ParseRecurrence(addOpts.Repeat)
	if err != nil {
		return err
	}

	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	created, err := client.CreateAlarm(ctx, common.CreateAlarmParams{
		Label:      addOpts.Label,
		Hour:       hour,
		Minute:     minute,
		Enabled:    !addOpts.Disabled,
		Recurrence: recurrence,
	})
	if err != nil {
		return err
	}

	printAlarm(out, created)

	return nil
}

// Update changes fields of an existing alarm.
func Update(ctx context.Context, opts *Options, out io.Writer, id string, updateOpts *UpdateOptions) error {
	params := common.UpdateAlarmParams{Label: updateOpts.Label}

	if updateOpts.Time != "" {
		hour, minute, err := ParseClock(updateOpts.Time)
		if err != nil {
			return err
		}

		params.Hour = &hour
		params.Minute = &minute
	}

	if updateOpts.Repeat != "" {
		recurrence, err := ParseRecurrence(updateOpts.Repeat)
		if err != nil {
			return err
		}

		if recurrence == nil {
			recurrence = []alarm.Weekday{}
		}

		params.Recurrence = &recurrence
	}

	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	updated, err := client.UpdateAlarm(ctx, id, params)
	if err != nil {
		return err
	}

	printAlarm(out, updated)

	return nil
}

// Delete removes an alarm.
func Delete(ctx context.Context, opts *Options, out io.Writer, id string) error {
	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	if err = client.DeleteAlarm(ctx, id); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "deleted", id)

	return nil
}

// SetEnabled switches an alarm on or off.
func SetEnabled(ctx context.Context, opts *Options, out io.Writer, id string, enabled bool) error {
	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	updated, err := client.SetAlarmEnabled(ctx, id, enabled)
	if err != nil {
		return err
	}

	printAlarm(out, updated)

	return nil
}

// Snooze creates a one-time alarm the given number of minutes from now.
func Snooze(ctx context.Context, opts *Options, out io.Writer, label string, minutes int) error {
	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	created, err := client.Snooze(ctx, label, minutes)
	if err != nil {
		return err
	}

	printAlarm(out, created)

	return nil
}

// Clear deletes every alarm.
func Clear(ctx context.Context, opts *Options, out io.Writer) error {
	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	if err = client.ClearAlarms(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "all alarms cleared")

	return nil
}

// Watch streams engine events to the writer until the context is canceled.
func Watch(ctx context.Context, opts *Options, out io.Writer) error {
	ctx = logger.WithName(ctx, "alarm-clockctl")

	client, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	stream, err := client.Watch(ctx)
	if err != nil {
		return err
	}

	for event := range stream {
		switch {
		case event.Label != "":
			_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", event.Kind, event.AlarmID, event.Label)
		default:
			_, _ = fmt.Fprintf(out, "%s\t%s\n", event.Kind, event.AlarmID)
		}
	}

	// The stream closing on cancellation is a normal exit.
	return nil
}

func printAlarm(out io.Writer, a *alarm.Alarm) {
	_, _ = fmt.Fprintf(out, "%s  %02d:%02d  %s  repeat=%s  enabled=%t\n",
		a.ID, a.Hour, a.Minute, a.Label, FormatRecurrence(a.Recurrence), a.Enabled)
}
