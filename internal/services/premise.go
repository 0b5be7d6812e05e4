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

type premiseService struct {
	premiseRepo    domain.PremiseRepository
	cache          domain.EventListCache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewPremiseService returns the PremiseService. Writes invalidate cached event listings.
func NewPremiseService(premiseRepo domain.PremiseRepository, cache domain.EventListCache, logger *slog.Logger, timeout time.Duration) domain.PremiseService {
	return &premiseService{
		premiseRepo:    premiseRepo,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *premiseService) List(ctx context.Context) ([]*domain.Premise, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	premises, err := s.premiseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list premises: %w", err)
	}
	if premises == nil {
		premises = []*domain.Premise{}
	}
	return premises, nil
}

func (s *premiseService) Create(ctx context.Context, actor *domain.Identity, p *domain.Premise) (*domain.Premise, error) {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	premise := cleanPremise(p)
	premise.ID = 0
	if err := validateStruct(premise).OrNil(); err != nil {
		return nil, err
	}
	if err := s.premiseRepo.Create(ctx, premise); err != nil {
		return nil, fmt.Errorf("create premise: %w", err)
	}
	return premise, nil
}

func (s *premiseService) Update(ctx context.Context, actor *domain.Identity, p *domain.Premise) (*domain.Premise, error) {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	premise := cleanPremise(p)
	if err := validateStruct(premise).OrNil(); err != nil {
		return nil, err
	}
	if err := s.premiseRepo.Update(ctx, premise); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update premise: %w", err)
	}
	invalidateListings(ctx, s.cache, s.logger)
	return premise, nil
}

func (s *premiseService) Delete(ctx context.Context, actor *domain.Identity, id int64) error {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.premiseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
			return err
		}
		return fmt.Errorf("delete premise: %w", err)
	}
	invalidateListings(ctx, s.cache, s.logger)
	return nil
}

func cleanPremise(p *domain.Premise) *domain.Premise {
	if p == nil {
		return &domain.Premise{}
	}
	return &domain.Premise{
		ID:         p.ID,
		Address:    sanitize.Text(p.Address),
		City:       sanitize.Text(p.City),
		PostalCode: sanitize.Text(p.PostalCode),
	}
}
