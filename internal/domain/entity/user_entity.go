package entity

import (
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in PasswordHash.
// BiometricKey is empty until the user binds one; when set it is unique across users.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	BiometricKey string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasBiometricKey reports whether a biometric credential is bound.
func (u *User) HasBiometricKey() bool {
	return u != nil && u.BiometricKey != ""
}
