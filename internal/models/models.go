package models

// All lists every model handled by AutoMigrate.
func All() []interface{} {
	return []interface{}{&User{}, &WeeklyMenu{}, &Reservation{}, &Settings{}, &PasswordReset{}}
}
