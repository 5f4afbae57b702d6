package models

import "time"

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

type Settings struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	CompanyName          string    `json:"companyName"`
	LogoURL              string    `json:"logoUrl"`
	PrimaryColor         string    `json:"primaryColor"`
	SecondaryColor       string    `json:"secondaryColor"`
	DeadlineDay          int       `gorm:"not null" json:"deadlineDay"`
	DeadlineTime         string    `gorm:"size:5;not null;default:'23:59'" json:"deadlineTime"`
	SupportEmail         string    `json:"supportEmail"`
	SupportPhone         string    `json:"supportPhone"`
	WelcomeTitle         string    `json:"welcomeTitle"`
	WelcomeMessage       string    `json:"welcomeMessage"`
	LoginBackgroundImage string    `json:"loginBackgroundImage"`
	MaintenanceMode      bool      `gorm:"not null" json:"maintenanceMode"`
	AnnouncementMessage  string    `json:"announcementMessage"`
	AnnouncementType     string    `gorm:"size:16;default:info" json:"announcementType"` // "info", "warning", "error"
	UpdatedAt            time.Time `json:"updatedAt"`
}

// DefaultSettings is the row created when none exists yet.
func DefaultSettings() Settings {
	return Settings{
		ID:               SettingsID,
		CompanyName:      "Sistema de Reservas Corporativo",
		PrimaryColor:     "#16a34a",
		SecondaryColor:   "#1e293b",
		DeadlineDay:      3,
		DeadlineTime:     "23:59",
		SupportEmail:     "soporte@empresa.com",
		WelcomeTitle:     "Sistema de Reservas Corporativo",
		WelcomeMessage:   "Gestiona tus comidas diarias de forma eficiente. Planifica tu semana y disfruta de un servicio de comedor de primera clase.",
		AnnouncementType: "info",
	}
}
