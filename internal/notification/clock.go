package notification

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // IANA names must resolve on hosts without zoneinfo
)

// clockTime is a wall-clock time of day, parsed from "HH:MM"
type clockTime struct {
	hour   int
	minute int
}

func parseClock(s string) (clockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return clockTime{}, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return clockTime{hour: t.Hour(), minute: t.Minute()}, nil
}

// seconds returns the offset of the clock time from midnight
func (c clockTime) seconds() int {
	return c.hour*3600 + c.minute*60
}

func (c clockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.hour, c.minute)
}

// secondsOfDay returns the wall-clock offset of t from its local midnight
func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// at returns the instant at clock c, dayOffset days after the local date of t.
// time.Date normalizes DST gaps and month overflow.
func at(t time.Time, dayOffset int, c clockTime) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+dayOffset, c.hour, c.minute, 0, 0, t.Location())
}

// LoadLocation resolves an IANA timezone name. Empty means UTC.
func LoadLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
}

// ParseWeekday converts a weekday name (full or three-letter, any case)
func ParseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return day, nil
}
