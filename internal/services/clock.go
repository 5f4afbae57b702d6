package services

import (
	"time"

	"meal_reservations/internal/booking"
)

// Clock reads the wall clock in the cafeteria's time zone. Week and deadline
// arithmetic always happens in that zone, never in UTC.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{Now: time.Now, Location: loc}
}

// FixedClock always reports t. Used by tools and tests.
func FixedClock(t time.Time) Clock {
	return Clock{Now: func() time.Time { return t }, Location: t.Location()}
}

func (c Clock) Today() time.Time {
	return c.Now().In(c.Location)
}

func (c Clock) CurrentWeek() string {
	return booking.WeekKey(booking.CurrentMonday(c.Today()))
}

func (c Clock) NextWeek() string {
	return booking.WeekKey(booking.NextMonday(c.Today()))
}
