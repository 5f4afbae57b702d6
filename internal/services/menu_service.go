package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/models"
)

// MenuView is a stored menu with its days decoded.
type MenuView struct {
	ID             uint             `json:"id"`
	WeekStart      string           `json:"weekStart"`
	Days           booking.MenuDays `json:"days"`
	BreadAvailable bool             `json:"breadAvailable"`
}

type MenuService struct {
	db    *gorm.DB
	clock Clock
}

func NewMenuService(db *gorm.DB, clock Clock) *MenuService {
	return &MenuService{db: db, clock: clock}
}

// Find loads the menu of week, or returns ErrMenuNotFound.
func (s *MenuService) Find(ctx context.Context, week string) (*MenuView, error) {
	var m models.WeeklyMenu
	err := s.db.WithContext(ctx).Where("week_start = ?", week).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load menu %s: %w", week, err)
	}
	return toMenuView(m)
}

// EnsureWeek returns the menu of week, seeding it from the default menu when
// it does not exist yet. Concurrent callers end up with the same row.
func (s *MenuService) EnsureWeek(ctx context.Context, week string) (*MenuView, error) {
	view, err := s.Find(ctx, week)
	if !errors.Is(err, ErrMenuNotFound) {
		return view, err
	}

	raw, err := booking.EncodeMenuDays(booking.DefaultMenuDays())
	if err != nil {
		return nil, err
	}
	seed := models.WeeklyMenu{WeekStart: week, Days: datatypes.JSON(raw), BreadAvailable: true}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("seed menu %s: %w", week, err)
	}
	logrus.WithField("week_start", week).Info("Seeded weekly menu with defaults")
	return s.Find(ctx, week)
}

// Current returns the menus of the current and the upcoming week, seeding
// whichever is missing.
func (s *MenuService) Current(ctx context.Context) (current, next *MenuView, err error) {
	if current, err = s.EnsureWeek(ctx, s.clock.CurrentWeek()); err != nil {
		return nil, nil, err
	}
	if next, err = s.EnsureWeek(ctx, s.clock.NextWeek()); err != nil {
		return nil, nil, err
	}
	return current, next, nil
}

// MenuUpdate is an edit of the current or the next week's menu.
type MenuUpdate struct {
	Type           string           `json:"type"` // "current" or "next"
	Days           booking.MenuDays `json:"days"`
	BreadAvailable *bool            `json:"breadAvailable"`
}

// Update normalizes and stores an edit. Each day keeps exactly three meals and
// three desserts.
func (s *MenuService) Update(ctx context.Context, in MenuUpdate) (*MenuView, error) {
	var week string
	switch in.Type {
	case "current":
		week = s.clock.CurrentWeek()
	case "next":
		week = s.clock.NextWeek()
	default:
		return nil, &booking.ValidationError{Msg: "Tipo de menu invalido (current/next)"}
	}
	if in.Days == nil {
		return nil, &booking.ValidationError{Msg: "Debe enviar un objeto days"}
	}

	existing, err := s.Find(ctx, week)
	if err != nil {
		return nil, err
	}
	normalized, err := booking.NormalizeMenuDays(in.Days, existing.Days)
	if err != nil {
		return nil, err
	}
	raw, err := booking.EncodeMenuDays(normalized)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"days": datatypes.JSON(raw)}
	if in.BreadAvailable != nil {
		updates["bread_available"] = *in.BreadAvailable
	}
	if err := s.db.WithContext(ctx).Model(&models.WeeklyMenu{}).Where("week_start = ?", week).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update menu %s: %w", week, err)
	}
	logrus.WithField("week_start", week).Info("Weekly menu updated")
	return s.Find(ctx, week)
}

func toMenuView(m models.WeeklyMenu) (*MenuView, error) {
	days, err := booking.DecodeMenuDays(m.Days)
	if err != nil {
		return nil, fmt.Errorf("menu %s: %w", m.WeekStart, err)
	}
	return &MenuView{ID: m.ID, WeekStart: m.WeekStart, Days: days, BreadAvailable: m.BreadAvailable}, nil
}
