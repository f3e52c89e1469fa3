package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/authmify/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write would violate a unique constraint (email or biometric key).
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository defines the interface for user-related database operations.
// Uniqueness of email and biometric key must be enforced atomically by the implementation.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByBiometricKey(ctx context.Context, key string) (*entity.User, error)
	Create(ctx context.Context, email, passwordHash string) (*entity.User, error)
	UpdateBiometricKey(ctx context.Context, userID, key string) error
}
