package application

import (
	"errors"
	"fmt"
)

// Callers branch on the base errors with errors.Is; the wrapped variants carry the message.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal error")

	// ErrInvalidCredentials is returned for every failed credential check so
	// callers cannot tell an unknown account from a wrong secret.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidSession     = fmt.Errorf("%w: invalid user session", ErrUnauthorized)

	ErrEmailInUse        = fmt.Errorf("%w: email in use", ErrConflict)
	ErrBiometricKeyInUse = fmt.Errorf("%w: biometric key already in use", ErrConflict)

	ErrBiometricKeyRequired = fmt.Errorf("%w: biometric key is required", ErrValidation)
	ErrPasswordTooLong      = fmt.Errorf("%w: password exceeds 72 bytes", ErrValidation)

	ErrUserNotFound = errors.New("user not found")
)
