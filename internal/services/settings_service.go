package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meal_reservations/internal/booking"
	"meal_reservations/internal/models"
)

type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Find returns the settings row, or nil when it has never been created.
func (s *SettingsService) Find(ctx context.Context) (*models.Settings, error) {
	var st models.Settings
	err := s.db.WithContext(ctx).First(&st, models.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &st, nil
}

// Get returns the settings row, creating it with defaults when absent.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	st, err := s.Find(ctx)
	if err != nil || st != nil {
		return st, err
	}

	def := models.DefaultSettings()
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&def).Error; err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	logrus.Info("Created default settings row")
	return s.Find(ctx)
}

// Deadline is the configured reservation cutoff. Missing settings fall back
// to Wednesday 23:59.
func (s *SettingsService) Deadline(ctx context.Context) (booking.Deadline, error) {
	st, err := s.Find(ctx)
	if err != nil {
		return booking.Deadline{}, err
	}
	if st == nil {
		return booking.DefaultDeadline(), nil
	}
	d := booking.Deadline{Day: st.DeadlineDay, Time: st.DeadlineTime}
	if d.Time == "" {
		d.Time = booking.DefaultDeadlineTime
	}
	return d, nil
}

// MaintenanceMode reports whether non-admin traffic should be turned away.
func (s *SettingsService) MaintenanceMode(ctx context.Context) (bool, error) {
	st, err := s.Find(ctx)
	if err != nil || st == nil {
		return false, err
	}
	return st.MaintenanceMode, nil
}

// SettingsUpdate carries a partial update; nil fields are left unchanged.
type SettingsUpdate struct {
	CompanyName          *string `json:"companyName"`
	LogoURL              *string `json:"logoUrl"`
	PrimaryColor         *string `json:"primaryColor"`
	SecondaryColor       *string `json:"secondaryColor"`
	DeadlineDay          *int    `json:"deadlineDay"`
	DeadlineTime         *string `json:"deadlineTime"`
	SupportEmail         *string `json:"supportEmail"`
	SupportPhone         *string `json:"supportPhone"`
	WelcomeTitle         *string `json:"welcomeTitle"`
	WelcomeMessage       *string `json:"welcomeMessage"`
	LoginBackgroundImage *string `json:"loginBackgroundImage"`
	MaintenanceMode      *bool   `json:"maintenanceMode"`
	AnnouncementMessage  *string `json:"announcementMessage"`
	AnnouncementType     *string `json:"announcementType"`
}

var announcementTypes = map[string]bool{"info": true, "warning": true, "error": true}

// Update applies in to the settings row after validating the deadline fields.
func (s *SettingsService) Update(ctx context.Context, in SettingsUpdate) (*models.Settings, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	setString(&st.CompanyName, in.CompanyName)
	setString(&st.LogoURL, in.LogoURL)
	setString(&st.PrimaryColor, in.PrimaryColor)
	setString(&st.SecondaryColor, in.SecondaryColor)
	setString(&st.SupportEmail, in.SupportEmail)
	setString(&st.SupportPhone, in.SupportPhone)
	setString(&st.WelcomeTitle, in.WelcomeTitle)
	setString(&st.WelcomeMessage, in.WelcomeMessage)
	setString(&st.LoginBackgroundImage, in.LoginBackgroundImage)
	setString(&st.AnnouncementMessage, in.AnnouncementMessage)
	setString(&st.DeadlineTime, in.DeadlineTime)
	if in.DeadlineDay != nil {
		st.DeadlineDay = *in.DeadlineDay
	}
	if in.MaintenanceMode != nil {
		st.MaintenanceMode = *in.MaintenanceMode
	}
	if in.AnnouncementType != nil {
		if !announcementTypes[*in.AnnouncementType] {
			return nil, &booking.ValidationError{Msg: "Tipo de anuncio invalido (info/warning/error)"}
		}
		st.AnnouncementType = *in.AnnouncementType
	}

	if err := (booking.Deadline{Day: st.DeadlineDay, Time: st.DeadlineTime}).Validate(); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(st).Error; err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return st, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
