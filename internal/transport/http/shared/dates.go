package shared

import (
	"time"

	"workforce/internal/domain/timecalc"
)

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC3339. Timestamps are truncated to their
// UTC calendar day since work entries, rosters and pay periods are day based.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := parsed.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// Clock flags raw when it is set but not an HH:MM wall-clock time.
func (v *Validator) Clock(field, raw string) {
	if raw == "" {
		return
	}
	if _, err := timecalc.ParseClock(raw); err != nil {
		v.Add(field, "must be a time in HH:MM format")
	}
}
