package timeutil

import (
	"fmt"
	"time"
)

// Times are wall-clock "HH:MM" strings and dates are "YYYY-MM-DD" strings.
// Zero-padded HH:MM strings compare lexicographically the same way they
// compare numerically, which the repositories rely on for SQL overlap checks.

const (
	timeLayout = "15:04"
	DateLayout = "2006-01-02"
)

// ParseTime validates a zero-padded HH:MM string and returns minutes since
// midnight. time.Parse alone accepts unpadded hours like "9:30"; stored times
// must stay zero-padded or the string comparisons stop matching numeric order.
func ParseTime(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: must be HH:MM (24h)", s)
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: must be HH:MM (24h)", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s)
	}
	return d, nil
}

// Overlaps reports whether [start1,end1) and [start2,end2) intersect.
// Touching boundaries do not overlap.
func Overlaps(start1, end1, start2, end2 string) bool {
	return start1 < end2 && start2 < end1
}

// AddMinutes shifts an HH:MM time forward by n minutes, wrapping past
// midnight.
func AddMinutes(t string, n int) string {
	mins, err := ParseTime(t)
	if err != nil {
		return t
	}
	total := ((mins+n)%1440 + 1440) % 1440
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// GraceDeadline computes the arrival deadline for a booking: start time plus
// the grace period, on the booking's calendar date (UTC).
func GraceDeadline(date, startTime string, graceMinutes int) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	mins, err := ParseTime(startTime)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(mins+graceMinutes) * time.Minute), nil
}

// Today returns the current UTC date as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// Clock returns the HH:MM representation of now in UTC.
func Clock(now time.Time) string {
	return now.UTC().Format(timeLayout)
}
