package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/config"
	"meal_reservations/internal/mailer"
	"meal_reservations/internal/models"
)

var montevideo = time.FixedZone("UYT", -3*60*60)

// wednesday is 2025-01-01 10:00; the upcoming week starts 2025-01-06.
var wednesday = time.Date(2025, 1, 1, 10, 0, 0, 0, montevideo)

const nextWeek = "2025-01-06"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email, funcNumber, role string) models.User {
	t.Helper()
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	u := models.User{Name: name, Email: email, FuncNumber: funcNumber, Role: role, PasswordHash: hash}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// firstChoices picks the first meal and dessert of every day of menu.
func firstChoices(menu booking.MenuDays) []booking.SubmittedSelection {
	out := make([]booking.SubmittedSelection, 0, len(booking.DayKeys))
	for _, d := range booking.DayKeys {
		out = append(out, booking.SubmittedSelection{Day: d, Meal: menu[d].Meals[0], Dessert: menu[d].Desserts[0]})
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ReservationEvent
}

func (p *recordingPublisher) PublishReservation(ev ReservationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}
