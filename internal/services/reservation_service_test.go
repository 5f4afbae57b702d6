package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/models"
)

type reservationFixture struct {
	db        *gorm.DB
	menus     *MenuService
	settings  *SettingsService
	svc       *ReservationService
	publisher *recordingPublisher
	user      models.User
}

func newReservationFixture(t *testing.T, now time.Time) *reservationFixture {
	t.Helper()
	db := newTestDB(t)
	clock := FixedClock(now)
	settings := NewSettingsService(db)
	pub := &recordingPublisher{}
	return &reservationFixture{
		db:        db,
		menus:     NewMenuService(db, clock),
		settings:  settings,
		svc:       NewReservationService(db, clock, settings, pub),
		publisher: pub,
		user:      createUser(t, db, "Ana Perez", "ana@empresa.com", "F100", models.RoleUser),
	}
}

func (f *reservationFixture) seedNextMenu(t *testing.T) booking.MenuDays {
	t.Helper()
	view, err := f.menus.EnsureWeek(context.Background(), nextWeek)
	require.NoError(t, err)
	return view.Days
}

func TestSubmitUpsertsOneRowPerUserAndWeek(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: firstChoices(menu)})
	require.NoError(t, err)

	sel := firstChoices(menu)
	sel[2].Meal = menu["miercoles"].Meals[1]
	sel[2].Bread = json.RawMessage("true")
	second, err := f.svc.Submit(ctx, f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "21:00", Selections: sel})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "21:00", second.TimeSlot)

	var count int64
	require.NoError(t, f.db.Model(&models.Reservation{}).Where("user_id = ? AND week_start = ?", f.user.ID, nextWeek).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err := booking.DecodeSelections(second.Selections)
	require.NoError(t, err)
	require.Len(t, stored, 5)
	assert.Equal(t, "miercoles", stored[2].Day)
	assert.Equal(t, menu["miercoles"].Meals[1], stored[2].Meal)
	assert.True(t, stored[2].Bread)
	assert.False(t, stored[0].Bread)
}

func TestConcurrentSubmitsKeepOneRow(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)
	ctx := context.Background()

	const n = 8
	slots := []string{"11:00", "12:00", "13:00", "21:00"}
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Submit(ctx, f.user.ID, SubmitInput{
				WeekStart:  nextWeek,
				TimeSlot:   slots[i%len(slots)],
				Selections: firstChoices(menu),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "submit %d", i)
	}
	var rows []models.Reservation
	require.NoError(t, f.db.Where("user_id = ? AND week_start = ?", f.user.ID, nextWeek).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Contains(t, slots, rows[0].TimeSlot)
}

func TestSubmitRejectsOtherWeeks(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)

	_, err := f.svc.Submit(context.Background(), f.user.ID, SubmitInput{WeekStart: "2025-01-13", TimeSlot: "12:00", Selections: firstChoices(menu)})

	var wrong *booking.WrongWeekError
	require.True(t, errors.As(err, &wrong))
	assert.Equal(t, nextWeek, wrong.Expected)
	assert.Equal(t, "Las reservas solo se abren para la semana que inicia el 2025-01-06", err.Error())
}

func TestSubmitRejectsAfterDeadline(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)
	ctx := context.Background()

	tuesday := 2
	_, err := f.settings.Update(ctx, SettingsUpdate{DeadlineDay: &tuesday})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: firstChoices(menu)})
	var closed *booking.DeadlineClosedError
	require.True(t, errors.As(err, &closed))
	assert.Equal(t, "El periodo de reservas ha cerrado (Cierra el Martes a las 23:59).", err.Error())

	var count int64
	require.NoError(t, f.db.Model(&models.Reservation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitClosesAtDeadlineMinute(t *testing.T) {
	late := time.Date(2025, 1, 1, 23, 59, 30, 0, montevideo)
	f := newReservationFixture(t, late)
	menu := f.seedNextMenu(t)

	_, err := f.svc.Submit(context.Background(), f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: firstChoices(menu)})
	var closed *booking.DeadlineClosedError
	assert.True(t, errors.As(err, &closed))
}

func TestSubmitWithoutMenuIsAServerFault(t *testing.T) {
	f := newReservationFixture(t, wednesday)

	_, err := f.svc.Submit(context.Background(), f.user.ID, SubmitInput{
		WeekStart:  nextWeek,
		TimeSlot:   "12:00",
		Selections: firstChoices(booking.DefaultMenuDays()),
	})
	var missing *booking.MenuNotConfiguredError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, nextWeek, missing.Week)
}

func TestSubmitRejectsOptionNotOnMenu(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)

	sel := firstChoices(menu)
	sel[0].Meal = "Langosta"
	_, err := f.svc.Submit(context.Background(), f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: sel})

	var ve *booking.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Opcion invalida en lunes", ve.Msg)
	assert.Empty(t, f.publisher.events)
}

func TestSubmitValidatesAgainstEditedMenu(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	f.seedNextMenu(t)
	ctx := context.Background()

	edited, err := f.menus.Update(ctx, MenuUpdate{
		Type: "next",
		Days: booking.MenuDays{"lunes": {Meals: []string{"Guiso de lentejas"}}},
	})
	require.NoError(t, err)
	require.Equal(t, "Guiso de lentejas", edited.Days["lunes"].Meals[0])

	sel := firstChoices(edited.Days)
	_, err = f.svc.Submit(ctx, f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: sel})
	require.NoError(t, err)
}

func TestSubmitPublishesEvent(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)

	_, err := f.svc.Submit(context.Background(), f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "13:30", Selections: firstChoices(menu)})
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, nextWeek, ev.WeekStart)
	assert.Equal(t, "13:30", ev.TimeSlot)
	assert.Equal(t, f.user.ID, ev.UserID)
	assert.True(t, ev.At.Equal(wednesday))
}

func TestForUserAndAdminListing(t *testing.T) {
	f := newReservationFixture(t, wednesday)
	menu := f.seedNextMenu(t)
	ctx := context.Background()
	idle := createUser(t, f.db, "Bruno Diaz", "bruno@empresa.com", "F200", models.RoleUser)

	_, err := f.svc.Submit(ctx, f.user.ID, SubmitInput{WeekStart: nextWeek, TimeSlot: "12:00", Selections: firstChoices(menu)})
	require.NoError(t, err)

	mine, err := f.svc.ForUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, nextWeek, mine[0].Week)
	assert.Len(t, mine[0].Selections, 5)

	reservations, roster, err := f.svc.AdminListing(ctx)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, "Ana Perez", reservations[0].Name)
	assert.Equal(t, "F100", reservations[0].FuncNumber)

	last := map[uint]*string{}
	for _, r := range roster {
		last[r.ID] = r.LastReservation
	}
	require.NotNil(t, last[f.user.ID])
	assert.Equal(t, nextWeek, *last[f.user.ID])
	assert.Nil(t, last[idle.ID])

	ok, err := f.svc.HasReserved(ctx, f.user.ID, nextWeek)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.svc.HasReserved(ctx, idle.ID, nextWeek)
	require.NoError(t, err)
	assert.False(t, ok)
}
