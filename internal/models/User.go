package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

type User struct {
	gorm.Model
	Name         string         `json:"name"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Role         string         `json:"role" gorm:"not null;default:user"` // "user", "admin", "superadmin"
	FuncNumber   string         `json:"funcNumber" gorm:"uniqueIndex;not null"`
	DocumentID   *string        `json:"documentId" gorm:"uniqueIndex"`
	PhoneNumber  string         `json:"phoneNumber"`
	PhotoURL     string         `json:"photoUrl"`
	Preferences  datatypes.JSON `json:"preferences"`

	Reservations []Reservation `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// IsAdmin reports whether the user may use the admin screens.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
