package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"ourevents/internal/domain"
	"ourevents/internal/metrics"
	"ourevents/internal/sanitize"
)

type eventService struct {
	eventRepo      domain.EventRepository
	premiseRepo    domain.PremiseRepository
	cache          domain.EventListCache
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService returns the EventService. cache may be a no-op implementation.
func NewEventService(eventRepo domain.EventRepository,
	premiseRepo domain.PremiseRepository,
	cache domain.EventListCache,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		premiseRepo:    premiseRepo,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter, page domain.PaginationParams) (*domain.EventPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	page = page.Normalize()

	cached, gen, ok, err := s.cache.Get(ctx, filter, page)
	cacheable := err == nil
	switch {
	case err != nil:
		metrics.ListingCacheRequests.WithLabelValues("error").Inc()
		s.logger.WarnContext(ctx, "listing cache read failed", "err", err)
	case ok:
		metrics.ListingCacheRequests.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.ListingCacheRequests.WithLabelValues("miss").Inc()
	}

	result, err := s.eventRepo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if result.Items == nil {
		result.Items = []*domain.Event{}
	}
	if cacheable {
		if err := s.cache.Set(ctx, gen, filter, page, result); err != nil {
			s.logger.WarnContext(ctx, "listing cache write failed", "err", err)
		}
	}
	return result, nil
}

func (s *eventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.get(ctx, id)
}

func (s *eventService) get(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) Create(ctx context.Context, actor *domain.Identity, in domain.EventInput) (*domain.Event, error) {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event := &domain.Event{
		Title:         sanitize.Text(in.Title),
		Description:   cleanDescription(in.Description),
		ImageURL:      strings.TrimSpace(in.ImageURL),
		Capacity:      in.Capacity,
		StartDatetime: in.StartDatetime,
		EndDatetime:   in.EndDatetime,
		PremiseID:     in.PremiseID,
		ManagerID:     actor.UserID,
	}
	event.SetCategoryIDs(uniqueIDs(in.CategoryIDs))

	ve := validateEvent(event)
	if !event.StartDatetime.IsZero() && !event.StartDatetime.After(s.now()) {
		ve.Add("start_datetime", "The start date must be in the future.")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.ensurePremise(ctx, event.PremiseID); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.invalidate(ctx)
	return s.get(ctx, event.ID)
}

func (s *eventService) Update(ctx context.Context, actor *domain.Identity, id int64, patch domain.EventPatch) (*domain.Event, error) {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		t := sanitize.Text(*patch.Title)
		patch.Title = &t
	}
	if patch.Description != nil {
		patch.Description = cleanDescription(patch.Description)
		if patch.Description == nil {
			event.Description = nil
		}
	}
	if patch.ImageURL != nil {
		u := strings.TrimSpace(*patch.ImageURL)
		patch.ImageURL = &u
	}
	if patch.CategoryIDs != nil {
		ids := uniqueIDs(*patch.CategoryIDs)
		patch.CategoryIDs = &ids
	}
	patch.Apply(event)

	if err := validateEvent(event).OrNil(); err != nil {
		return nil, err
	}
	if patch.PremiseID != nil {
		if err := s.ensurePremise(ctx, event.PremiseID); err != nil {
			return nil, err
		}
	}
	if err := s.eventRepo.Update(ctx, event, patch.CategoryIDs != nil); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.invalidate(ctx)
	return s.get(ctx, id)
}

func (s *eventService) Delete(ctx context.Context, actor *domain.Identity, id int64) error {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleAdmin}); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *eventService) ListRegistered(ctx context.Context, actor *domain.Identity) ([]*domain.Event, error) {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleUser}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByAttendee(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) ensurePremise(ctx context.Context, premiseID int64) error {
	if _, err := s.premiseRepo.GetByID(ctx, premiseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrPremiseNotFound
		}
		return fmt.Errorf("get premise: %w", err)
	}
	return nil
}

func (s *eventService) invalidate(ctx context.Context) {
	invalidateListings(ctx, s.cache, s.logger)
}

// invalidateListings drops cached listing pages after a write. Failures only cost freshness until the TTL expires.
func invalidateListings(ctx context.Context, cache domain.EventListCache, logger *slog.Logger) {
	if err := cache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "listing cache invalidation failed", "err", err)
	}
}

// validateEvent checks the event's own fields; the joined premise is validated on its own routes.
func validateEvent(e *domain.Event) *domain.ValidationError {
	subject := *e
	subject.Premise = nil
	return validateStruct(&subject)
}

func cleanDescription(d *string) *string {
	out := sanitize.OptionalHTML(d)
	if out != nil && *out == "" {
		return nil
	}
	return out
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
