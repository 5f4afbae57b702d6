package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDeadlineDay  = 3 // Wednesday
	DefaultDeadlineTime = "23:59"
)

// DayNames are the Spanish weekday names indexed Sunday=0..Saturday=6.
var DayNames = []string{"Domingo", "Lunes", "Martes", "Miercoles", "Jueves", "Viernes", "Sabado"}

// DayName returns the Spanish name of day (Sunday=0). Out-of-range values
// name the default deadline day.
func DayName(day int) string {
	if day < 0 || day >= len(DayNames) {
		day = DefaultDeadlineDay
	}
	return DayNames[day]
}

// Deadline is the weekly cutoff after which reservations for the upcoming
// week are refused. Day uses Sunday=0..Saturday=6.
type Deadline struct {
	Day  int
	Time string
}

// DefaultDeadline is applied when no settings row exists.
func DefaultDeadline() Deadline {
	return Deadline{Day: DefaultDeadlineDay, Time: DefaultDeadlineTime}
}

// ParseClock parses an "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// Validate checks that the deadline can be stored in settings.
func (d Deadline) Validate() error {
	if d.Day < 0 || d.Day > 6 {
		return &ValidationError{Msg: "El dia de cierre debe estar entre 0 (domingo) y 6 (sabado)"}
	}
	if _, _, err := ParseClock(d.Time); err != nil {
		return &ValidationError{Msg: "La hora de cierre debe tener formato HH:MM"}
	}
	return nil
}

// mondayFirst maps Sunday=0..Saturday=6 onto Monday=1..Sunday=7.
func mondayFirst(day int) int {
	if day == 0 {
		return 7
	}
	return day
}

// IsReservationOpen reports whether next-week reservations are still accepted at now.
func IsReservationOpen(now time.Time, d Deadline) bool {
	current := mondayFirst(int(now.Weekday()))
	deadline := mondayFirst(d.Day)

	if current > deadline {
		return false
	}
	if current == deadline {
		h, m, err := ParseClock(d.Time)
		if err != nil {
			h, m, _ = ParseClock(DefaultDeadlineTime)
		}
		y, mo, day := now.Date()
		cutoff := time.Date(y, mo, day, h, m, 0, 0, now.Location())
		if now.After(cutoff) {
			return false
		}
	}
	return true
}

// DaysUntilDeadline is the number of days between today and the deadline day,
// counted on the Monday-first scale. Negative once the deadline day has passed.
func DaysUntilDeadline(now time.Time, d Deadline) int {
	return mondayFirst(d.Day) - mondayFirst(int(now.Weekday()))
}

// CheckDeadline returns a *DeadlineClosedError when reservations are closed at now.
func CheckDeadline(now time.Time, d Deadline) error {
	if IsReservationOpen(now, d) {
		return nil
	}
	return &DeadlineClosedError{Deadline: d}
}
