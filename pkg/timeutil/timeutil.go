// Package timeutil provides calendar-day utilities for study tracking.
// Streaks, weekly stats and goal deadlines all work at date-only granularity,
// so day boundaries live in one place. Default timezone is Asia/Almaty (UTC+5,
// no DST); it can be overridden from configuration.
// No external dependencies - uses only standard library.
package timeutil

import (
	"sync"
	"time"
)

// AlmatyTZ is the Almaty timezone (UTC+5, no DST).
var AlmatyTZ = time.FixedZone("Asia/Almaty", 5*60*60)

var (
	locMu    sync.RWMutex
	location = AlmatyTZ
)

// SetLocation overrides the timezone used for day boundaries.
// Called once at startup from configuration.
func SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	locMu.Lock()
	location = loc
	locMu.Unlock()
}

// Location returns the configured timezone.
func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	return location
}

// Now returns the current time in the configured timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// ToLocal converts a time to the configured timezone.
func ToLocal(t time.Time) time.Time {
	return t.In(Location())
}

// StartOfDay returns the start of the day (00:00:00) in the configured timezone.
func StartOfDay(t time.Time) time.Time {
	lt := ToLocal(t)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, Location())
}

// StartOfWeek returns the start of the week (Monday 00:00:00).
func StartOfWeek(t time.Time) time.Time {
	lt := ToLocal(t)
	weekday := int(lt.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(lt.AddDate(0, 0, -(weekday - 1)))
}

// IsSameDay checks if two times are on the same calendar day.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := ToLocal(t1), ToLocal(t2)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsConsecutiveDay checks if t2 is the calendar day after t1.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	return IsSameDay(ToLocal(t1).AddDate(0, 0, 1), t2)
}

// IsToday checks if the given time is today.
func IsToday(t time.Time) bool {
	return IsSameDay(t, Now())
}

// IsYesterday checks if the given time is yesterday.
func IsYesterday(t time.Time) bool {
	return IsSameDay(t, Now().AddDate(0, 0, -1))
}

// DaysBetween calculates the number of whole calendar days between two times.
func DaysBetween(t1, t2 time.Time) int {
	d1 := StartOfDay(t1)
	d2 := StartOfDay(t2)
	days := int(d2.Sub(d1).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// WithinLastDays checks whether t falls inside the trailing n-day window
// ending at ref (inclusive of today).
func WithinLastDays(t, ref time.Time, n int) bool {
	cutoff := StartOfDay(ref).AddDate(0, 0, -(n - 1))
	return !ToLocal(t).Before(cutoff)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// FormatDateStr formats a time as a date string (YYYY-MM-DD).
func FormatDateStr(t time.Time) string {
	return ToLocal(t).Format(FormatDate)
}

// ParseDate parses a date string (YYYY-MM-DD) in the configured timezone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, Location())
}
