package schedule

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academy/core"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// LocalToUTC interprets date & clock as a wall-clock time in the IANA zone tz and returns the UTC instant.
// A malformed clock is reported under clockField.
func LocalToUTC(date, clock, tz, clockField string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "timezone", Error: "must be a valid IANA time zone"})
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date or time format"})
	}
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, core.NewValidationError(err, core.FieldError{Field: clockField, Error: "invalid date or time format"})
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc).UTC(), nil
}

// ParseBound parses a `from`/`to` query value: RFC3339, or a bare date (midnight UTC).
func ParseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.Errorf("%q is neither an RFC3339 time nor a YYYY-MM-DD date", s)
	}
	return t, nil
}
