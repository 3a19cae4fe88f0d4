package holidays

import (
	"context"

	"github.com/username/business-calendar/internal/calendar"
	"go.uber.org/zap"
)

// CompositeSource implements Source with fallback strategy
// Primary: RemoteSource (production calendar)
// Fallback: FileSource (local file)
type CompositeSource struct {
	primary  Source
	fallback Source
	logger   *zap.Logger
}

// NewCompositeSource creates a new CompositeSource
func NewCompositeSource(primary, fallback Source, logger *zap.Logger) *CompositeSource {
	return &CompositeSource{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Holidays returns the primary periods, or the fallback ones when the primary fails
func (cs *CompositeSource) Holidays(ctx context.Context) ([]calendar.HolidayPeriod, error) {
	periods, err := cs.primary.Holidays(ctx)
	if err == nil {
		return periods, nil
	}

	cs.logger.Warn("Primary holiday source failed, using fallback",
		zap.Error(err))

	return cs.fallback.Holidays(ctx)
}
