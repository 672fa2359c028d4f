package utils

import (
	"strings"
	"time"
)

const (
	LayoutDate     = "2006-01-02"
	LayoutDateTime = "2006-01-02 15:04"
)

var riyadh = time.FixedZone("AST", 3*60*60)

// ServiceLocation is the timezone pickup times are entered in. Saudi Arabia
// has no DST, so the fixed zone is used when tzdata is missing.
func ServiceLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Asia/Riyadh"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return riyadh
	}
	return loc
}

// ParseDate parses YYYY-MM-DD in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(LayoutDate, strings.TrimSpace(s), loc)
}

// ParsePickup parses a date + HH:MM pair in loc.
func ParsePickup(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(LayoutDateTime, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
}

// FormatDateTime formats t as "YYYY-MM-DD HH:MM" in loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(LayoutDateTime)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
