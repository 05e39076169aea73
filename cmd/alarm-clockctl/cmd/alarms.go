package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	// addLabel, addTime, addRepeat and addDisabled back the add command flags.
	addLabel    string
	addTime     string
	addRepeat   string
	addDisabled bool

	// updateLabel, updateTime and updateRepeat back the update command flags.
	updateLabel  string
	updateTime   string
	updateRepeat string

	// snoozeLabel and snoozeMinutes back the snooze command flags.
	snoozeLabel   string
	snoozeMinutes int

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.List(ctx, clientOptions(), cobraCmd.OutOrStdout())
		},
	}

	getCmd = &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Get(ctx, clientOptions(), cobraCmd.OutOrStdout(), args[0])
		},
	}

	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Create a new alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Add(ctx, clientOptions(), cobraCmd.OutOrStdout(), &client.AddOptions{
				Label:    addLabel,
				Time:     addTime,
				Repeat:   addRepeat,
				Disabled: addDisabled,
			})
		},
	}

	updateCmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			updateOpts := &client.UpdateOptions{
				Time:   updateTime,
				Repeat: updateRepeat,
			}

			// Only send the label when the flag was given, so an empty value
			// can still reset it to the default.
			if cobraCmd.Flags().Changed("label") {
				updateOpts.Label = &updateLabel
			}

			ctx, stop := signalContext()
			defer stop()

			return client.Update(ctx, clientOptions(), cobraCmd.OutOrStdout(), args[0], updateOpts)
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Delete(ctx, clientOptions(), cobraCmd.OutOrStdout(), args[0])
		},
	}

	enableCmd = &cobra.Command{
		Use:   "enable <id>",
		Short: "Switch an alarm on.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.SetEnabled(ctx, clientOptions(), cobraCmd.OutOrStdout(), args[0], true)
		},
	}

	disableCmd = &cobra.Command{
		Use:   "disable <id>",
		Short: "Switch an alarm off.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.SetEnabled(ctx, clientOptions(), cobraCmd.OutOrStdout(), args[0], false)
		},
	}

	snoozeCmd = &cobra.Command{
		Use:   "snooze",
		Short: "Create a one-time alarm a few minutes from now.",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Snooze(ctx, clientOptions(), cobraCmd.OutOrStdout(), snoozeLabel, snoozeMinutes)
		},
	}

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete all alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Clear(ctx, clientOptions(), cobraCmd.OutOrStdout())
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Stream alarm events until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Watch(ctx, clientOptions(), cobraCmd.OutOrStdout())
		},
	}
)

// signalContext returns a context canceled on SIGTERM or SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	addCmd.Flags().StringVarP(&addLabel, "label", "l", "", "alarm label")
	addCmd.Flags().StringVarP(&addTime, "time", "t", "", "alarm time as HH:MM")
	addCmd.Flags().StringVarP(&addRepeat, "repeat", "r", "once",
		"repeat spec: once|daily|weekdays|weekends or weekday list (mon,fri or 0,4)")
	addCmd.Flags().BoolVar(&addDisabled, "disabled", false, "create the alarm switched off")

	if err := addCmd.MarkFlagRequired("time"); err != nil {
		panic(err)
	}

	updateCmd.Flags().StringVarP(&updateLabel, "label", "l", "", "alarm label")
	updateCmd.Flags().StringVarP(&updateTime, "time", "t", "", "alarm time as HH:MM")
	updateCmd.Flags().StringVarP(&updateRepeat, "repeat", "r", "",
		"repeat spec: once|daily|weekdays|weekends or weekday list (mon,fri or 0,4)")

	snoozeCmd.Flags().StringVarP(&snoozeLabel, "label", "l", "", "alarm label")
	snoozeCmd.Flags().IntVarP(&snoozeMinutes, "minutes", "m", 10, "minutes from now")

	rootCmd.AddCommand(
		listCmd, getCmd, addCmd, updateCmd, deleteCmd,
		enableCmd, disableCmd, snoozeCmd, clearCmd, watchCmd,
	)
}
