package booking

import (
	"fmt"
	"time"
)

// WeekKeyLayout is the ISO date format used to key menus and reservations by week.
const WeekKeyLayout = "2006-01-02"

// DayKeys are the weekday keys of a menu week, in calendar order.
var DayKeys = []string{"lunes", "martes", "miercoles", "jueves", "viernes"}

// dayOffsets maps a weekday key to its distance in days from the week's Monday.
var dayOffsets = map[string]int{
	"lunes":     0,
	"martes":    1,
	"miercoles": 2,
	"jueves":    3,
	"viernes":   4,
}

// midnight truncates t to 00:00 in t's own location.
func midnight(t time.Time, addDays int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+addDays, 0, 0, 0, 0, t.Location())
}

// CurrentMonday returns the Monday that starts now's week.
// When now is a Monday the result is that same day.
func CurrentMonday(now time.Time) time.Time {
	dow := int(now.Weekday())
	back := dow - 1
	if dow == 0 {
		back = 6
	}
	return midnight(now, -back)
}

// NextMonday returns the Monday that starts the following week.
// It is always strictly after today: on a Monday it is seven days ahead.
func NextMonday(now time.Time) time.Time {
	dow := int(now.Weekday())
	diff := (8 - dow) % 7
	if diff == 0 {
		diff = 7
	}
	return midnight(now, diff)
}

// WeekKey formats a week-start date as YYYY-MM-DD.
func WeekKey(t time.Time) string {
	return t.Format(WeekKeyLayout)
}

// ParseWeekKey parses a YYYY-MM-DD week key in loc.
func ParseWeekKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(WeekKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week %q: %w", key, err)
	}
	return t, nil
}

// IsDayKey reports whether key names one of the five menu weekdays.
func IsDayKey(key string) bool {
	_, ok := dayOffsets[key]
	return ok
}

// DayDate returns the calendar date of dayKey within the week keyed by weekStart.
func DayDate(weekStart, dayKey string) (string, error) {
	offset, ok := dayOffsets[dayKey]
	if !ok {
		return "", fmt.Errorf("unknown day %q", dayKey)
	}
	start, err := ParseWeekKey(weekStart, time.UTC)
	if err != nil {
		return "", err
	}
	return WeekKey(start.AddDate(0, 0, offset)), nil
}
