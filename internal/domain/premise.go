package domain

import "context"

// Premise is the venue an event takes place at.
// swagger:model Premise
type Premise struct {
	ID         int64  `json:"id"`
	Address    string `json:"address" validate:"required,min=2,max=255"`
	City       string `json:"city" validate:"required,min=2,max=100"`
	PostalCode string `json:"postal_code" validate:"required,min=2,max=50"`
}

// PremiseRepository defines the interface for premise storage.
type PremiseRepository interface {
	List(ctx context.Context) ([]*Premise, error)
	GetByID(ctx context.Context, id int64) (*Premise, error)
	Create(ctx context.Context, p *Premise) error
	Update(ctx context.Context, p *Premise) error
	Delete(ctx context.Context, id int64) error
}

// PremiseService exposes premise reads to everyone and writes to admins.
type PremiseService interface {
	List(ctx context.Context) ([]*Premise, error)
	Create(ctx context.Context, actor *Identity, p *Premise) (*Premise, error)
	Update(ctx context.Context, actor *Identity, p *Premise) (*Premise, error)
	Delete(ctx context.Context, actor *Identity, id int64) error
}
