package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ourevents/internal/domain"
)

type premiseRepository struct {
	DB *sql.DB
}

func NewPremiseRepository(db *sql.DB) domain.PremiseRepository {
	return &premiseRepository{DB: db}
}

func (r *premiseRepository) List(ctx context.Context) ([]*domain.Premise, error) {
	query := `SELECT id, address, city, postal_code FROM premises ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	premises := make([]*domain.Premise, 0)
	for rows.Next() {
		p := &domain.Premise{}
		if err := rows.Scan(&p.ID, &p.Address, &p.City, &p.PostalCode); err != nil {
			return nil, err
		}
		premises = append(premises, p)
	}
	return premises, rows.Err()
}

func (r *premiseRepository) GetByID(ctx context.Context, id int64) (*domain.Premise, error) {
	query := `SELECT id, address, city, postal_code FROM premises WHERE id = $1`
	p := &domain.Premise{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Address, &p.City, &p.PostalCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPremiseNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *premiseRepository) Create(ctx context.Context, p *domain.Premise) error {
	query := `
		INSERT INTO premises (address, city, postal_code)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, p.Address, p.City, p.PostalCode).Scan(&p.ID)
}

func (r *premiseRepository) Update(ctx context.Context, p *domain.Premise) error {
	query := `UPDATE premises SET address = $1, city = $2, postal_code = $3 WHERE id = $4`
	result, err := r.DB.ExecContext(ctx, query, p.Address, p.City, p.PostalCode, p.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPremiseNotFound
	}
	return nil
}

// Delete removes the premise. Events still pointing at it block the delete (ON DELETE RESTRICT).
func (r *premiseRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM premises WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPremiseNotFound
	}
	return nil
}
