// Package holidays loads holiday periods for the business calendar from
// configuration text, local files and a remote production calendar.
package holidays

import (
	"context"
	"fmt"

	"github.com/username/business-calendar/internal/calendar"
	"go.uber.org/zap"
)

// Source provides holiday periods
type Source interface {
	Holidays(ctx context.Context) ([]calendar.HolidayPeriod, error)
}

// Inline is a holiday list written directly in the configuration,
// e.g. "2012-05-10:2012-05-19;*-12-25"
type Inline string

// Holidays parses the inline text
func (s Inline) Holidays(ctx context.Context) ([]calendar.HolidayPeriod, error) {
	return calendar.ParseHolidays(string(s))
}

// Collect loads every source in order and concatenates the periods.
// The first failing source aborts the load.
func Collect(ctx context.Context, logger *zap.Logger, sources ...Source) ([]calendar.HolidayPeriod, error) {
	var all []calendar.HolidayPeriod
	for i, src := range sources {
		if src == nil {
			continue
		}
		periods, err := src.Holidays(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load holiday source %d: %w", i, err)
		}
		all = append(all, periods...)
	}

	logger.Info("Holidays collected",
		zap.Int("sources", len(sources)),
		zap.Int("periods", len(all)))

	return all, nil
}
