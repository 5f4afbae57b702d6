package services

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail lower-cases and trims an e-mail address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeFuncNumber strips all whitespace from an employee number and
// upper-cases it.
func NormalizeFuncNumber(n string) string {
	return strings.ToUpper(strings.Join(strings.Fields(n), ""))
}
