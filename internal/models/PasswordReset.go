package models

import "time"

// PasswordReset is a single-use token; a user has at most one live token.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}
