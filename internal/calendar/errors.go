package calendar

import "errors"

var (
	// ErrMalformedDuration is returned for duration expressions outside the
	// <digits><d|h|m>... grammar
	ErrMalformedDuration = errors.New("malformed duration")

	// ErrMalformedHolidayConfig is returned when holiday text cannot be parsed
	ErrMalformedHolidayConfig = errors.New("malformed holiday configuration")

	// ErrInvalidConfiguration is returned for calendars that cannot produce a
	// working instant (empty working window, every day excluded, ...)
	ErrInvalidConfiguration = errors.New("invalid calendar configuration")
)
