package review

import "time"

// utcLayout is ISO-8601 in UTC with a Z designator and an optional
// subsecond fraction, the timestamp form used on every dateCreated field.
const utcLayout = "2006-01-02T15:04:05.999999Z07:00"

// AsUTC formats a time as an ISO-8601 UTC timestamp.
func AsUTC(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(utcLayout)
}

// NowUTC returns the current time as an ISO-8601 UTC timestamp.
func NowUTC() string {
	return AsUTC(time.Now())
}

// StartOfWeekUTC returns the Monday 00:00 UTC of the week containing t as
// an ISO-8601 timestamp. Used as a weekly-rolling software version for
// reviewers wrapping external data sources that refresh on that cadence.
func StartOfWeekUTC(t time.Time) string {
	t = t.UTC()
	daysPastMonday := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -daysPastMonday)
	return AsUTC(monday)
}

// ParseUTC parses an ISO-8601 timestamp. Timestamps without an explicit
// zone are read as UTC; a bare date does not count as a timestamp.
func ParseUTC(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
