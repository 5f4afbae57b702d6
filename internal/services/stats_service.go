package services

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/models"
)

type StatsService struct {
	db    *gorm.DB
	clock Clock
}

func NewStatsService(db *gorm.DB, clock Clock) *StatsService {
	return &StatsService{db: db, clock: clock}
}

// Weeks lists every week that has reservations, newest first. The upcoming
// week is always included.
func (s *StatsService) Weeks(ctx context.Context) ([]string, error) {
	var weeks []string
	err := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Distinct("week_start").
		Pluck("week_start", &weeks).Error
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))

	next := s.clock.NextWeek()
	for _, w := range weeks {
		if w == next {
			return weeks, nil
		}
	}
	return append([]string{next}, weeks...), nil
}

// ResolveWeek returns week, or the upcoming week when week is empty.
func (s *StatsService) ResolveWeek(week string) (string, error) {
	if week == "" {
		return s.clock.NextWeek(), nil
	}
	if _, err := booking.ParseWeekKey(week, s.clock.Location); err != nil {
		return "", &booking.ValidationError{Msg: "Formato de semana invalido (YYYY-MM-DD)"}
	}
	return week, nil
}

// Records loads the reservations of week joined with their owners.
func (s *StatsService) Records(ctx context.Context, week string) ([]booking.Record, error) {
	var rows []models.Reservation
	err := s.db.WithContext(ctx).Preload("User").
		Where("week_start = ?", week).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load reservations for %s: %w", week, err)
	}

	records := make([]booking.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, booking.Record{
			ID:         r.ID,
			UserID:     r.UserID,
			UserName:   r.User.Name,
			FuncNumber: r.User.FuncNumber,
			WeekStart:  r.WeekStart,
			TimeSlot:   r.TimeSlot,
			Selections: r.Selections,
		})
	}
	return records, nil
}

// SlotStats tallies week by day and time slot. skipped counts the entries
// that could not be attributed.
func (s *StatsService) SlotStats(ctx context.Context, week string) (booking.SlotStats, int, error) {
	records, err := s.Records(ctx, week)
	if err != nil {
		return nil, 0, err
	}
	stats, skipped := booking.AggregateByDaySlot(records)
	return stats, skipped, nil
}

// Report builds the admin report of week.
func (s *StatsService) Report(ctx context.Context, week string) (booking.Report, error) {
	records, err := s.Records(ctx, week)
	if err != nil {
		return booking.Report{}, err
	}
	var totalUsers int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return booking.Report{}, fmt.Errorf("count users: %w", err)
	}
	return booking.BuildReport(week, records, int(totalUsers)), nil
}
