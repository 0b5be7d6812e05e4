package postgres

import (
	"context"
	"database/sql"

	"ourevents/internal/domain"
)

type eventRegistrationRepository struct {
	DB *sql.DB
}

func NewEventRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &eventRegistrationRepository{
		DB: db,
	}
}

// Register adds the membership. The primary key on (user_id, event_id) backs up the
// state check when two requests race past it.
func (r *eventRegistrationRepository) Register(ctx context.Context, userID, eventID int64) error {
	return withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		registered, err := registrationState(ctx, tx, userID, eventID)
		if err != nil {
			return err
		}
		if registered {
			return domain.ErrAlreadyRegistered
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO event_registrations (user_id, event_id) VALUES ($1, $2)`, userID, eventID)
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyRegistered
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *eventRegistrationRepository) Unregister(ctx context.Context, userID, eventID int64) error {
	return withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		registered, err := registrationState(ctx, tx, userID, eventID)
		if err != nil {
			return err
		}
		if !registered {
			return domain.ErrNotRegistered
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM event_registrations WHERE user_id = $1 AND event_id = $2`, userID, eventID)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotRegistered
		}
		return nil
	})
}

// registrationState checks that both ends exist and reports whether the membership is present.
func registrationState(ctx context.Context, tx *sql.Tx, userID, eventID int64) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrUserNotFound
	}
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrEventNotFound
	}
	var registered bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_registrations WHERE user_id = $1 AND event_id = $2)`, userID, eventID,
	).Scan(&registered)
	return registered, err
}
