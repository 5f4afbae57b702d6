package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/models"
)

func TestWeeksAlwaysStartsWithUpcomingWeek(t *testing.T) {
	db := newTestDB(t)
	stats := NewStatsService(db, FixedClock(wednesday))
	u := createUser(t, db, "Ana", "ana@empresa.com", "F1", models.RoleUser)

	for _, w := range []string{"2024-12-16", "2024-12-30", "2024-12-23"} {
		require.NoError(t, db.Create(&models.Reservation{UserID: u.ID, WeekStart: w, TimeSlot: "12:00", Selections: datatypes.JSON("[]")}).Error)
	}

	weeks, err := stats.Weeks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{nextWeek, "2024-12-30", "2024-12-23", "2024-12-16"}, weeks)
}

func TestResolveWeek(t *testing.T) {
	stats := NewStatsService(newTestDB(t), FixedClock(wednesday))

	w, err := stats.ResolveWeek("")
	require.NoError(t, err)
	assert.Equal(t, nextWeek, w)

	w, err = stats.ResolveWeek("2024-12-30")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-30", w)

	_, err = stats.ResolveWeek("30/12/2024")
	assert.Error(t, err)
}

func TestReportEndToEnd(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)
	ctx := context.Background()
	other := createUser(t, f.db, "Bruno", "bruno@empresa.com", "F200", models.RoleUser)
	createUser(t, f.db, "Carla", "carla@empresa.com", "F300", models.RoleUser)

	_, err := f.svc.Submit(ctx, f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: firstChoices(menu)})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, other.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "21:00", Selections: firstChoices(menu)})
	require.NoError(t, err)
	// A corrupt row from an older import must not break the report.
	ghost := createUser(t, f.db, "Dario", "dario@empresa.com", "F400", models.RoleUser)
	require.NoError(t, f.db.Create(&models.Reservation{UserID: ghost.ID, WeekStart: nextWeek, TimeSlot: "12:00", Selections: datatypes.JSON(`{"bad":1}`)}).Error)

	stats := NewStatsService(f.db, FixedClock(wednesday))

	slots, skipped, err := stats.SlotStats(ctx, nextWeek)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	lunesMeal := menu["lunes"].Meals[0]
	assert.Equal(t, 1, slots["lunes"]["12:00"].Meals[lunesMeal])
	assert.Equal(t, 1, slots["lunes"]["21:00"].Meals[lunesMeal])

	report, err := stats.Report(ctx, nextWeek)
	require.NoError(t, err)
	assert.Equal(t, nextWeek, report.Week)
	assert.Equal(t, booking.UserStats{TotalUsers: 4, ActiveUsers: 3}, report.UserStats)
	assert.Equal(t, booking.BreadStats{WithoutBread: 10}, report.BreadStats)
	assert.Len(t, report.DetailedReservations, 10)
	assert.Equal(t, "2025-01-06", report.DailyStats[0].Date)
	assert.Equal(t, 2, report.DailyStats[0].Total)
}

func TestEditedMenuRoundTripAndTally(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	f.seedNextMenu(t)
	ctx := context.Background()

	edited, err := f.menus.Update(ctx, MenuUpdate{
		Type: "next",
		Days: booking.MenuDays{"lunes": {Meals: []string{"A", "B", "C"}}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, edited.Days["lunes"].Meals)

	sel := firstChoices(edited.Days)
	require.Equal(t, "A", sel[0].Meal)
	_, err = f.svc.Submit(ctx, f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: sel})
	require.NoError(t, err)

	mine, err := f.svc.ForUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, nextWeek, mine[0].WeekStart)
	assert.Equal(t, booking.Selection{Day: "lunes", Meal: "A", Dessert: edited.Days["lunes"].Desserts[0]}, mine[0].Selections[0])

	slots, skipped, err := NewStatsService(f.db, FixedClock(wednesday)).SlotStats(ctx, nextWeek)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Equal(t, map[string]int{"A": 1}, slots["lunes"]["12:00"].Meals)
}
