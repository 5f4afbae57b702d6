package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/models"
)

// ReservationEvent is announced after a reservation has been stored.
type ReservationEvent struct {
	WeekStart string
	TimeSlot  string
	UserID    uint
	At        time.Time
}

// ReservationPublisher receives ReservationEvents, e.g. to push live updates
// to admin dashboards.
type ReservationPublisher interface {
	PublishReservation(ev ReservationEvent)
}

// SubmitInput is a reservation request for the upcoming week.
type SubmitInput struct {
	WeekStart  string                       `json:"weekStart"`
	TimeSlot   string                       `json:"timeSlot"`
	Selections []booking.SubmittedSelection `json:"selections"`
}

// ReservationView is a stored reservation with its selections decoded.
type ReservationView struct {
	ID         uint                `json:"id"`
	UserID     uint                `json:"userId"`
	WeekStart  string              `json:"weekStart"`
	Week       string              `json:"week"`
	TimeSlot   string              `json:"timeSlot"`
	Selections []booking.Selection `json:"selections"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`

	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	FuncNumber string `json:"funcNumber,omitempty"`
}

type ReservationService struct {
	db        *gorm.DB
	clock     Clock
	settings  *SettingsService
	publisher ReservationPublisher
}

func NewReservationService(db *gorm.DB, clock Clock, settings *SettingsService, publisher ReservationPublisher) *ReservationService {
	return &ReservationService{db: db, clock: clock, settings: settings, publisher: publisher}
}

// Submit creates or replaces userID's reservation for the upcoming week.
//
// The request is rejected when it targets another week, when the deadline
// has passed, or when any selection is not on that week's menu. Storage is a
// single upsert on (user_id, week_start), so concurrent submissions from the
// same user leave exactly one row holding the last write.
func (s *ReservationService) Submit(ctx context.Context, userID uint, in SubmitInput) (*models.Reservation, error) {
	now := s.clock.Today()
	expected := booking.WeekKey(booking.NextMonday(now))
	if in.WeekStart != expected {
		return nil, &booking.WrongWeekError{Expected: expected, Got: in.WeekStart}
	}

	deadline, err := s.settings.Deadline(ctx)
	if err != nil {
		return nil, err
	}
	if err := booking.CheckDeadline(now, deadline); err != nil {
		return nil, err
	}

	// The menu is read fresh on every submission so edits apply immediately.
	var menu models.WeeklyMenu
	err = s.db.WithContext(ctx).Where("week_start = ?", expected).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &booking.MenuNotConfiguredError{Week: expected}
	}
	if err != nil {
		return nil, fmt.Errorf("load menu %s: %w", expected, err)
	}
	days, err := booking.DecodeMenuDays(menu.Days)
	if err != nil {
		return nil, fmt.Errorf("menu %s: %w", expected, err)
	}

	selections, err := booking.ValidateSelections(in.Selections, in.TimeSlot, days)
	if err != nil {
		return nil, err
	}
	raw, err := booking.EncodeSelections(selections)
	if err != nil {
		return nil, err
	}

	row := models.Reservation{
		UserID:     userID,
		WeekStart:  expected,
		TimeSlot:   in.TimeSlot,
		Selections: datatypes.JSON(raw),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.AssignmentColumns([]string{"selections", "time_slot", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("save reservation: %w", err)
	}

	// The upsert does not reliably report the id of an updated row.
	var saved models.Reservation
	if err := s.db.WithContext(ctx).Where("user_id = ? AND week_start = ?", userID, expected).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload reservation: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"week_start": expected,
		"time_slot":  saved.TimeSlot,
	}).Info("Reservation saved")

	if s.publisher != nil {
		s.publisher.PublishReservation(ReservationEvent{
			WeekStart: saved.WeekStart,
			TimeSlot:  saved.TimeSlot,
			UserID:    userID,
			At:        s.clock.Now(),
		})
	}
	return &saved, nil
}

// ForUser lists userID's reservations, newest week first.
func (s *ReservationService) ForUser(ctx context.Context, userID uint) ([]ReservationView, error) {
	var rows []models.Reservation
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("week_start DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reservations for user %d: %w", userID, err)
	}
	out := make([]ReservationView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toReservationView(r))
	}
	return out, nil
}

// RosterEntry is a user as listed on the admin reservations screen.
type RosterEntry struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	FuncNumber      string  `json:"funcNumber"`
	DocumentID      *string `json:"documentId"`
	PhoneNumber     string  `json:"phoneNumber"`
	Role            string  `json:"role"`
	PhotoURL        string  `json:"photoUrl"`
	LastReservation *string `json:"lastReservation"`
}

// AdminListing returns every reservation with its owner and the user roster
// annotated with each user's most recent reserved week.
func (s *ReservationService) AdminListing(ctx context.Context) ([]ReservationView, []RosterEntry, error) {
	var rows []models.Reservation
	if err := s.db.WithContext(ctx).Preload("User").Order("week_start DESC, id").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("list reservations: %w", err)
	}
	reservations := make([]ReservationView, 0, len(rows))
	for _, r := range rows {
		v := toReservationView(r)
		v.Name = "Usuario Desconocido"
		if r.User.ID != 0 {
			v.Name = r.User.Name
			v.Email = r.User.Email
			v.FuncNumber = r.User.FuncNumber
		}
		reservations = append(reservations, v)
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, nil, fmt.Errorf("list users: %w", err)
	}

	type lastWeek struct {
		UserID uint
		Week   string
	}
	var latest []lastWeek
	err := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Select("user_id, MAX(week_start) AS week").
		Group("user_id").
		Scan(&latest).Error
	if err != nil {
		return nil, nil, fmt.Errorf("latest reservation per user: %w", err)
	}
	byUser := make(map[uint]string, len(latest))
	for _, l := range latest {
		byUser[l.UserID] = l.Week
	}

	roster := make([]RosterEntry, 0, len(users))
	for _, u := range users {
		e := RosterEntry{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			FuncNumber:  u.FuncNumber,
			DocumentID:  u.DocumentID,
			PhoneNumber: u.PhoneNumber,
			Role:        u.Role,
			PhotoURL:    u.PhotoURL,
		}
		if w, ok := byUser[u.ID]; ok {
			e.LastReservation = &w
		}
		roster = append(roster, e)
	}
	return reservations, roster, nil
}

// HasReserved reports whether userID already has a reservation for week.
func (s *ReservationService) HasReserved(ctx context.Context, userID uint, week string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("user_id = ? AND week_start = ?", userID, week).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count reservations: %w", err)
	}
	return n > 0, nil
}

func toReservationView(r models.Reservation) ReservationView {
	sel, err := booking.DecodeSelections(r.Selections)
	if err != nil {
		logrus.WithError(err).WithField("reservation_id", r.ID).Warn("Reservation has unreadable selections")
		sel = []booking.Selection{}
	}
	return ReservationView{
		ID:         r.ID,
		UserID:     r.UserID,
		WeekStart:  r.WeekStart,
		Week:       r.WeekStart,
		TimeSlot:   r.TimeSlot,
		Selections: sel,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
