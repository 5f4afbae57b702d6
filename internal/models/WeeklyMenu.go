package models

import (
	"time"

	"gorm.io/datatypes"
)

// WeeklyMenu holds the offer of one week, keyed by its Monday.
// Days is the JSON encoding of booking.MenuDays.
type WeeklyMenu struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	WeekStart      string         `gorm:"size:10;uniqueIndex;not null" json:"weekStart"`
	Days           datatypes.JSON `gorm:"not null" json:"-"`
	BreadAvailable bool           `gorm:"not null" json:"breadAvailable"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
