package domain

import "context"

// Category is a label attached to events.
// swagger:model Category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryRepository defines the interface for category storage.
type CategoryRepository interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}

// CategoryService exposes category reads to everyone and writes to admins.
type CategoryService interface {
	List(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, actor *Identity, name string) (*Category, error)
	Update(ctx context.Context, actor *Identity, id int64, name string) (*Category, error)
	Delete(ctx context.Context, actor *Identity, id int64) error
}
