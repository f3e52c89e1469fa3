package application

import "time"

type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventUserLoggedIn   EventType = "user.logged_in"
	EventBiometricBound EventType = "user.biometric_bound"
)

// AuthEvent is published after a successful authentication operation.
// It never carries a password, biometric key or token.
type AuthEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Method     string    `json:"method"`
	OccurredAt time.Time `json:"occurred_at"`
}
