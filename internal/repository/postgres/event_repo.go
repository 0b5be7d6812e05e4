package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"ourevents/internal/domain"
)

// eventSelect is shared by every read. The premise join is one-to-one, so it never multiplies rows.
const eventSelect = `
	SELECT e.id, e.title, e.description, e.image_url, e.capacity, e.start_datetime, e.end_datetime,
		e.manager_id, p.id, p.address, p.city, p.postal_code
	FROM events e
	JOIN premises p ON p.id = e.premise_id`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// eventWhere builds the listing predicate. The count and page queries share it so the
// total always describes the same set the page is cut from.
func eventWhere(f domain.EventFilter) (string, []any) {
	var conds []string
	var args []any
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM event_categories ec WHERE ec.event_id = e.id AND ec.category_id = $%d)", len(args)))
	}
	if f.City != "" {
		args = append(args, f.City)
		conds = append(conds, fmt.Sprintf("p.city = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) (*domain.EventPage, error) {
	result := &domain.EventPage{Items: []*domain.Event{}}
	where, args := eventWhere(filter)

	err := withTx(ctx, r.DB, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		countQuery := `SELECT COUNT(*) FROM events e JOIN premises p ON p.id = e.premise_id` + where
		if err := tx.QueryRowContext(ctx, countQuery, args...).Scan(&result.TotalCount); err != nil {
			return fmt.Errorf("count events: %w", err)
		}
		if result.TotalCount == 0 {
			return nil
		}

		pageQuery := eventSelect + where +
			fmt.Sprintf(" ORDER BY e.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		pageArgs := append(append([]any{}, args...), page.PageSize, page.Offset())
		items, err := queryEvents(ctx, tx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("list events: %w", err)
		}
		if err := loadCategories(ctx, tx, items); err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		result.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	if err := loadCategories(ctx, r.DB, []*domain.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByAttendee(ctx context.Context, userID int64) ([]*domain.Event, error) {
	query := eventSelect + `
		JOIN event_registrations er ON er.event_id = e.id
		WHERE er.user_id = $1
		ORDER BY e.start_datetime ASC, e.id ASC`
	events, err := queryEvents(ctx, r.DB, query, userID)
	if err != nil {
		return nil, err
	}
	if err := loadCategories(ctx, r.DB, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	return withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		query := `
			INSERT INTO events (title, description, image_url, capacity, start_datetime, end_datetime, premise_id, manager_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query,
			e.Title, e.Description, e.ImageURL, e.Capacity, e.StartDatetime, e.EndDatetime, e.PremiseID, e.ManagerID,
		).Scan(&e.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrPremiseNotFound
			}
			return err
		}
		return linkCategories(ctx, tx, e.ID, e.CategoryIDs())
	})
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event, replaceCategories bool) error {
	return withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		query := `
			UPDATE events
			SET title = $1, description = $2, image_url = $3, capacity = $4,
				start_datetime = $5, end_datetime = $6, premise_id = $7
			WHERE id = $8
		`
		result, err := tx.ExecContext(ctx, query,
			e.Title, e.Description, e.ImageURL, e.Capacity, e.StartDatetime, e.EndDatetime, e.PremiseID, e.ID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrPremiseNotFound
			}
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrEventNotFound
		}
		if !replaceCategories {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_categories WHERE event_id = $1`, e.ID); err != nil {
			return err
		}
		return linkCategories(ctx, tx, e.ID, e.CategoryIDs())
	})
}

// Delete clears the category links before removing the event itself.
func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM event_categories WHERE event_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrEventNotFound
		}
		return nil
	})
}

// linkCategories attaches the given categories. Ids with no matching category are skipped.
func linkCategories(ctx context.Context, tx *sql.Tx, eventID int64, categoryIDs []int64) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO event_categories (event_id, category_id)
		SELECT $1, c.id FROM categories c WHERE c.id = ANY($2)
		ON CONFLICT DO NOTHING
	`
	_, err := tx.ExecContext(ctx, query, eventID, pq.Array(categoryIDs))
	return err
}

// loadCategories fetches the categories of all events in one query and attaches them.
func loadCategories(ctx context.Context, q queryer, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.Event, len(events))
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		e.Categories = []*domain.Category{}
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	query := `
		SELECT ec.event_id, c.id, c.name
		FROM event_categories ec
		JOIN categories c ON c.id = ec.category_id
		WHERE ec.event_id = ANY($1)
		ORDER BY ec.event_id, c.id
	`
	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID int64
		c := &domain.Category{}
		if err := rows.Scan(&eventID, &c.ID, &c.Name); err != nil {
			return err
		}
		if e, ok := byID[eventID]; ok {
			e.Categories = append(e.Categories, c)
		}
	}
	return rows.Err()
}

func queryEvents(ctx context.Context, q queryer, query string, args ...any) ([]*domain.Event, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{Premise: &domain.Premise{}}
	var descNull sql.NullString
	err := s.Scan(
		&e.ID, &e.Title, &descNull, &e.ImageURL, &e.Capacity, &e.StartDatetime, &e.EndDatetime,
		&e.ManagerID, &e.Premise.ID, &e.Premise.Address, &e.Premise.City, &e.Premise.PostalCode,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	e.PremiseID = e.Premise.ID
	return e, nil
}
