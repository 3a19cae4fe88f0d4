package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/username/business-calendar/internal/daemon"
	"github.com/username/business-calendar/internal/timer"
	"github.com/username/business-calendar/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func timerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Manage business-time timers",
	}

	cmd.AddCommand(timerAddCmd())
	cmd.AddCommand(timerListCmd())
	cmd.AddCommand(timerRemoveCmd())

	return cmd
}

func timerAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <duration>",
		Short: "Schedule a timer due after a business duration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := initializeTimers(cmd.Context(), nil)
			if err != nil {
				return err
			}

			t, err := manager.Schedule(args[0], args[1])
			if err != nil {
				return err
			}

			outPrintf(cmd.OutOrStdout(), "⏰ %s %q due %s\n", t.ID, t.Name, t.DueAt.Format(dateutil.DateTimeLayout))
			return nil
		},
	}
}

func timerListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List timers, earliest due first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := initializeTimers(cmd.Context(), nil)
			if err != nil {
				return err
			}

			timers := manager.List()
			out := cmd.OutOrStdout()

			switch strings.ToLower(output) {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(timers); err != nil {
					return fmt.Errorf("failed to encode timers: %w", err)
				}
				return enc.Close()
			case "text", "":
				if len(timers) == 0 {
					outPrintln(out, "No timers")
					return nil
				}
				outPrintln(out, "  ID                                   | Due              | Duration | Status  | Name")
				outPrintln(out, "---------------------------------------+------------------+----------+---------+----------------")
				for _, t := range timers {
					status := "pending"
					if t.Fired() {
						status = "fired"
					}
					outPrintf(out, "  %s | %s | %-8s | %-7s | %s\n",
						t.ID,
						t.DueAt.Format(dateutil.DateTimeLayout),
						t.Duration,
						status,
						t.Name)
				}
				return nil
			default:
				return fmt.Errorf("unknown output format: %s", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or yaml")

	return cmd
}

func timerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a timer by ID or ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, _, err := initializeTimers(cmd.Context(), nil)
			if err != nil {
				return err
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				t, findErr := findTimer(manager.List(), args[0])
				if findErr != nil {
					return findErr
				}
				id = t.ID
			}

			if err := manager.Remove(id); err != nil {
				return err
			}

			outPrintf(cmd.OutOrStdout(), "🗑  Removed %s\n", id)
			return nil
		},
	}
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the timer daemon",
		Long:  "Check timers on an interval and fire the ones that are due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, m, err := initializeTimers(cmd.Context(), prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}

			d := daemon.NewDaemon(manager, nil, m, daemon.Options{
				CheckInterval: appConfig.Daemon.GetCheckInterval(),
				SystemTray:    appConfig.Daemon.SystemTray,
				MetricsAddr:   appConfig.Daemon.MetricsAddr,
				Gatherer:      prometheus.DefaultGatherer,
			}, logger)

			logger.Info("Starting daemon",
				zap.String("state_file", appConfig.Timers.StateFile),
				zap.Bool("system_tray", appConfig.Daemon.SystemTray))

			return d.Start()
		},
	}
}

// findTimer resolves an ID prefix of at least 8 characters to a single timer
func findTimer(timers []timer.Timer, prefix string) (timer.Timer, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < 8 {
		return timer.Timer{}, fmt.Errorf("timer id prefix %q is too short", prefix)
	}

	var found []timer.Timer
	for _, t := range timers {
		if strings.HasPrefix(t.ID.String(), prefix) {
			found = append(found, t)
		}
	}

	switch len(found) {
	case 0:
		return timer.Timer{}, fmt.Errorf("%w: %s", timer.ErrTimerNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return timer.Timer{}, fmt.Errorf("timer id prefix %s is ambiguous", prefix)
	}
}
