package services

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("Usuario no encontrado")
	ErrInvalidCredentials = errors.New("Credenciales invalidas")
	ErrInvalidResetToken  = errors.New("Token invalido o expirado")
	ErrMenuNotFound       = errors.New("Menu no encontrado")
)

// ConflictError reports a uniqueness clash the caller can fix.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// ForbiddenError is an authenticated request the caller's role does not allow.
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

// isUniqueViolation detects duplicate keys from lib/pq (SQLSTATE 23505) or
// from a dialect that translates errors into gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
