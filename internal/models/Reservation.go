package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation is a user's choice for one week. At most one row exists per
// (user, week); the unique index backs the upsert.
// Selections is the JSON encoding of []booking.Selection.
type Reservation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_reservation_user_week" json:"userId"`
	User       User           `gorm:"foreignKey:UserID" json:"-"`
	WeekStart  string         `gorm:"size:10;not null;uniqueIndex:idx_reservation_user_week;index:idx_reservation_week" json:"weekStart"`
	TimeSlot   string         `gorm:"size:16;not null" json:"timeSlot"`
	Selections datatypes.JSON `gorm:"not null" json:"-"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
