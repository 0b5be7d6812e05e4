package domain

import (
	"context"
	"time"
)

// Registration actions, as published on the message broker.
const (
	RegistrationActionRegister   = "register"
	RegistrationActionUnregister = "unregister"
)

// RegistrationRepository stores user to event membership. Both operations run their
// existence checks, state check and write inside one transaction.
// Register returns ErrUserNotFound, ErrEventNotFound or ErrAlreadyRegistered;
// Unregister returns ErrUserNotFound, ErrEventNotFound or ErrNotRegistered.
type RegistrationRepository interface {
	Register(ctx context.Context, userID, eventID int64) error
	Unregister(ctx context.Context, userID, eventID int64) error
}

// RegistrationChanged is published after a successful registration transition.
type RegistrationChanged struct {
	UserID     int64     `json:"user_id"`
	EventID    int64     `json:"event_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RegistrationPublisher delivers RegistrationChanged messages (best effort).
type RegistrationPublisher interface {
	PublishRegistrationChanged(ctx context.Context, msg RegistrationChanged) error
}

// RegistrationService drives the registration state machine.
// userID is the user being registered; a base-role actor may only pass its own id.
type RegistrationService interface {
	Register(ctx context.Context, actor *Identity, userID, eventID int64) error
	Unregister(ctx context.Context, actor *Identity, userID, eventID int64) error
}
