package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func calcCmd() *cobra.Command {
	var startStr string

	cmd := &cobra.Command{
		Use:   "calc <duration>",
		Short: "Calculate the instant a business duration ends",
		Long:  "Advance the current time (or --start) by a duration such as 3h, 30m or 2d4h, counting only working hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, err := initializeCalendar(cmd.Context(), calendar.RealClock{})
			if err != nil {
				return err
			}

			var result time.Time
			if startStr != "" {
				start, err := dateutil.ParseDateTime(startStr, time.Local)
				if err != nil {
					return fmt.Errorf("invalid start: %w", err)
				}
				result, err = bc.CalculateBusinessTimeFrom(start, args[0])
				if err != nil {
					return err
				}
			} else {
				result, err = bc.CalculateBusinessTime(args[0])
				if err != nil {
					return err
				}
			}

			outPrintln(cmd.OutOrStdout(), result.Format(dateutil.DateTimeLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "Start instant (yyyy-MM-dd[ HH:mm]), default now")

	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <yyyy-MM-dd>",
		Short: "Show whether a date is a working day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.ParseInLocation(dateutil.DateLayout, args[0], time.Local)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}

			bc, err := initializeCalendar(cmd.Context(), calendar.RealClock{})
			if err != nil {
				return err
			}

			info := bc.DayInfo(date)
			out := cmd.OutOrStdout()
			outPrintf(out, "%s %s: %s, %dh", getIcon(info.Type), date.Format(dateutil.DateLayout), info.Type, info.WorkingHours)
			if info.Note != "" {
				outPrintf(out, " (%s)", info.Note)
			}
			outPrintln(out)

			if !info.IsWorkday {
				next, err := bc.NextWorkingDay(date)
				if err != nil {
					return err
				}
				outPrintf(out, "Next working day: %s\n", next.Format(dateutil.DateLayout))
			}
			return nil
		},
	}

	return cmd
}

func monthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month [yyyy-MM]",
		Short: "Show the per-day breakdown of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now()
			if len(args) == 1 {
				var err error
				month, err = time.ParseInLocation("2006-01", args[0], time.Local)
				if err != nil {
					return fmt.Errorf("invalid month: %w", err)
				}
			}

			bc, err := initializeCalendar(cmd.Context(), calendar.RealClock{})
			if err != nil {
				return err
			}

			info := bc.MonthInfo(month.Year(), month.Month(), time.Local)
			logger.Debug("Month info calculated",
				zap.Int("year", info.Year),
				zap.Int("month", int(info.Month)),
				zap.Int("working_hours", info.WorkingHours))

			out := cmd.OutOrStdout()
			outPrintf(out, "\n📅 %s %d\n", info.Month, info.Year)
			outPrintln(out, "═══════════════════════════════════════════════════════")
			outPrintln(out, "  Date         | Day | Type     | Hours | Note")
			outPrintln(out, "---------------+-----+----------+-------+----------------")
			for _, day := range info.Days {
				outPrintf(out, "  %s   | %s | %-8s | %4dh | %s\n",
					day.Date.Format(dateutil.DateLayout),
					day.Date.Weekday().String()[:3],
					day.Type,
					day.WorkingHours,
					day.Note)
			}
			outPrintln(out, "═══════════════════════════════════════════════════════")
			outPrintf(out, "  Working days:   %d\n", info.WorkDays)
			outPrintf(out, "  Weekend days:   %d\n", info.Weekends)
			outPrintf(out, "  Holidays:       %d\n", info.Holidays)
			outPrintf(out, "  Working hours:  %dh\n", info.WorkingHours)
			return nil
		},
	}

	return cmd
}

type holidayView struct {
	Period    string `yaml:"period"`
	Recurring bool   `yaml:"recurring"`
	Note      string `yaml:"note,omitempty"`
}

func holidaysCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the configured holiday periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bc, err := initializeCalendar(cmd.Context(), calendar.RealClock{})
			if err != nil {
				return err
			}

			periods := bc.Config().Holidays
			out := cmd.OutOrStdout()

			switch strings.ToLower(output) {
			case "yaml":
				views := make([]holidayView, 0, len(periods))
				for _, p := range periods {
					views = append(views, holidayView{Period: p.String(), Recurring: p.Wildcard(), Note: p.Note})
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(views); err != nil {
					return fmt.Errorf("failed to encode holidays: %w", err)
				}
				return enc.Close()
			case "text", "":
				if len(periods) == 0 {
					outPrintln(out, "No holidays configured")
					return nil
				}
				for _, p := range periods {
					line := p.String()
					if p.Note != "" {
						line += "  " + p.Note
					}
					outPrintln(out, line)
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

func getIcon(t calendar.DayType) string {
	if t == calendar.DayTypeWorkday {
		return "✅"
	}
	return "⛔"
}
