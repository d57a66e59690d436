package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatherly/internal/shared/apierr"
	"gatherly/internal/shared/constants"
	"gatherly/internal/shared/validation"
	"gatherly/pkg/cache"
	"gatherly/pkg/logger"
)

// Service interface defines the contract for event business logic
type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error)
	GetEvent(ctx context.Context, eventID string) (*EventResponse, error)
	ListEvents(ctx context.Context, status string) ([]EventResponse, error)
	UpdateEvent(ctx context.Context, eventID string, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger

	detailTTL time.Duration
	listTTL   time.Duration
}

// NewService creates a new event service. The cache may be nil; reads then
// always go to the store.
func NewService(repo Repository, cacheService cache.Service, detailTTL, listTTL time.Duration) Service {
	return &service{
		repo:      repo,
		cache:     cacheService,
		log:       logger.GetDefault(),
		detailTTL: detailTTL,
		listTTL:   listTTL,
	}
}

// CreateEvent validates the payload, generates an eventId when absent, and
// stores the event with zeroed bookkeeping.
func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest) (*EventResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	eventID := strings.TrimSpace(req.EventID)
	if eventID == "" {
		eventID = uuid.NewString()
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	now := time.Now().UTC()
	event := &Event{
		EventID:         eventID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		Date:            req.Date,
		Location:        req.Location,
		Organizer:       req.Organizer,
		Status:          status,
		Capacity:        req.Capacity,
		RegisteredCount: 0,
		WaitlistEnabled: req.WaitlistEnabled,
		Waitlist:        Waitlist{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			return nil, apierr.New(apierr.CodeDuplicateEvent, "event with this eventId already exists")
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.invalidateListings(ctx)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEvent(ctx context.Context, eventID string) (*EventResponse, error) {
	if s.cache != nil {
		var cached EventResponse
		if err := s.cache.Get(ctx, constants.EventDetailKey(eventID), &cached); err == nil {
			return &cached, nil
		}
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, apierr.New(apierr.CodeEventNotFound, "event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	resp := event.ToResponse()

	if s.cache != nil {
		if err := s.cache.Set(ctx, constants.EventDetailKey(eventID), resp, s.detailTTL); err != nil {
			s.log.WithError(err).Debug("event detail cache set failed")
		}
	}

	return &resp, nil
}

func (s *service) ListEvents(ctx context.Context, status string) ([]EventResponse, error) {
	if status != "" && !validation.IsValidEventStatus(status) {
		return nil, apierr.NewValidation([]apierr.FieldDetail{
			{Field: "status", Message: "must be one of draft, published, cancelled, completed, active"},
		})
	}

	if s.cache != nil {
		var cached []EventResponse
		if err := s.cache.Get(ctx, constants.EventsListKey(status), &cached); err == nil {
			return cached, nil
		}
	}

	events, err := s.repo.GetAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, events[i].ToResponse())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, constants.EventsListKey(status), responses, s.listTTL); err != nil {
			s.log.WithError(err).Debug("event list cache set failed")
		}
	}

	return responses, nil
}

// UpdateEvent patches the opaque event fields. Attempts to change the
// engine-owned fields are rejected before touching the store.
func (s *service) UpdateEvent(ctx context.Context, eventID string, req UpdateEventRequest) (*EventResponse, error) {
	if details := engineFieldViolations(req); len(details) > 0 {
		return nil, apierr.NewValidation(details)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Date != nil {
		updates["date"] = *req.Date
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Organizer != nil {
		updates["organizer"] = *req.Organizer
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return nil, apierr.NewValidation([]apierr.FieldDetail{
			{Field: "body", Message: "no fields to update"},
		})
	}

	event, err := s.repo.UpdateOpaque(ctx, eventID, updates)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, apierr.New(apierr.CodeEventNotFound, "event not found")
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.invalidateEvent(ctx, eventID)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, eventID string) error {
	err := s.repo.Delete(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return apierr.New(apierr.CodeEventNotFound, "event not found")
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.invalidateEvent(ctx, eventID)
	return nil
}

func engineFieldViolations(req UpdateEventRequest) []apierr.FieldDetail {
	var details []apierr.FieldDetail
	if req.Capacity != nil {
		details = append(details, apierr.FieldDetail{Field: "capacity", Message: "is immutable after creation"})
	}
	if req.RegisteredCount != nil {
		details = append(details, apierr.FieldDetail{Field: "registeredCount", Message: "is managed by the registration engine"})
	}
	if req.WaitlistEnabled != nil {
		details = append(details, apierr.FieldDetail{Field: "waitlistEnabled", Message: "is immutable after creation"})
	}
	if req.Waitlist != nil {
		details = append(details, apierr.FieldDetail{Field: "waitlist", Message: "is managed by the registration engine"})
	}
	return details
}

func (s *service) invalidateEvent(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.EventDetailKey(eventID)); err != nil {
		s.log.WithError(err).Debug("event detail cache invalidation failed")
	}
	s.invalidateListings(ctx)
}

func (s *service) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, constants.EventsListPattern()); err != nil {
		s.log.WithError(err).Debug("event list cache invalidation failed")
	}
}
