package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ourevents/internal/domain"
	"ourevents/internal/metrics"
)

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	eventRepo        domain.EventRepository
	publisher        domain.RegistrationPublisher
	emailService     domain.EmailService
	logger           *slog.Logger
	contextTimeout   time.Duration
	now              func() time.Time
}

// NewRegistrationService returns the RegistrationService. publisher and emailService
// are notified after each successful transition; their failures never fail the call.
func NewRegistrationService(registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	publisher domain.RegistrationPublisher,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		eventRepo:        eventRepo,
		publisher:        publisher,
		emailService:     emailService,
		logger:           logger,
		contextTimeout:   timeout,
		now:              time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, actor *domain.Identity, userID, eventID int64) error {
	return s.transition(ctx, actor, domain.RegistrationActionRegister, userID, eventID, s.registrationRepo.Register)
}

func (s *registrationService) Unregister(ctx context.Context, actor *domain.Identity, userID, eventID int64) error {
	return s.transition(ctx, actor, domain.RegistrationActionUnregister, userID, eventID, s.registrationRepo.Unregister)
}

func (s *registrationService) transition(ctx context.Context, actor *domain.Identity, action string, userID, eventID int64,
	apply func(ctx context.Context, userID, eventID int64) error,
) error {
	if err := domain.Authorize(actor, domain.Access{Role: domain.RoleUser, Target: userID}); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(action, "forbidden").Inc()
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := apply(ctx, userID, eventID); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(action, transitionResult(err)).Inc()
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrInvalidState) {
			return err
		}
		return fmt.Errorf("%s: %w", action, err)
	}
	metrics.RegistrationsTotal.WithLabelValues(action, "ok").Inc()

	s.notify(ctx, action, userID, eventID)
	return nil
}

func (s *registrationService) notify(ctx context.Context, action string, userID, eventID int64) {
	msg := domain.RegistrationChanged{
		UserID:     userID,
		EventID:    eventID,
		Action:     action,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishRegistrationChanged(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "registration message not published", "action", action, "user_id", userID, "event_id", eventID, "err", err)
	}
	if action != domain.RegistrationActionRegister {
		return
	}
	if err := s.sendConfirmation(ctx, userID, eventID); err != nil {
		s.logger.WarnContext(ctx, "registration confirmation not sent", "user_id", userID, "event_id", eventID, "err", err)
	}
}

func (s *registrationService) sendConfirmation(ctx context.Context, userID, eventID int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	data := &domain.RegistrationConfirmedEmailData{
		Email:         user.Email,
		FirstName:     user.FirstName,
		EventTitle:    event.Title,
		StartDatetime: event.StartDatetime,
	}
	if event.Premise != nil {
		data.City = event.Premise.City
	}
	return s.emailService.SendRegistrationConfirmed(ctx, data)
}

func transitionResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}
