package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ourevents/internal/domain"
	"ourevents/internal/sanitize"
)

type categoryService struct {
	categoryRepo   domain.CategoryRepository
	cache          domain.EventListCache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewCategoryService returns the CategoryService. Writes invalidate cached event listings,
// since listed events embed their categories.
func NewCategoryService(categoryRepo domain.CategoryRepository, cache domain.EventListCache, logger *slog.Logger, timeout time.Duration) domain.CategoryService {
	return &categoryService{
		categoryRepo:   categoryRepo,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, actor *domain.Identity, name string) (*domain.Category, error) {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category := &domain.Category{Name: sanitize.Text(name)}
	if err := validateStruct(category).OrNil(); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, actor *domain.Identity, id int64, name string) (*domain.Category, error) {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	category.Name = sanitize.Text(name)
	if err := validateStruct(category).OrNil(); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	invalidateListings(ctx, s.cache, s.logger)
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, actor *domain.Identity, id int64) error {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	invalidateListings(ctx, s.cache, s.logger)
	return nil
}
