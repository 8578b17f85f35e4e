package locale

import (
	"time"
)

const (
	DefaultTimezone = "Asia/Ho_Chi_Minh"

	clockLayout = "15:04"
	dateLayout  = "2/1/2006"
	ISODate     = "2006-01-02"
)

// Location resolves name, falling back to the clinic's zone and then UTC.
func Location(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(clockLayout)
}

// FormatRange renders "HH:MM - HH:MM" in loc.
func FormatRange(start, end time.Time, loc *time.Location) string {
	return FormatClock(start, loc) + " - " + FormatClock(end, loc)
}

// FormatDate renders a date the way vi-VN does (d/M/yyyy).
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// Today returns the current date in loc as YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(ISODate)
}

// ParseTimestamp accepts the RFC 3339 variants the appointment service emits.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
