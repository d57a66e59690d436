package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatherly/internal/events"
	"gatherly/internal/shared/apierr"
	"gatherly/internal/shared/config"
	"gatherly/internal/shared/constants"
	"gatherly/internal/users"
	"gatherly/pkg/cache"
	"gatherly/pkg/logger"
)

// Service is the registration engine. Each operation reads a snapshot of the
// event, decides the outcome, and attempts a transactional write conditioned
// on the snapshot still holding. When the condition fails another writer won
// the race; the engine re-reads and decides again, up to its retry budget.
type Service interface {
	Register(ctx context.Context, userID, eventID string) (*RegistrationResponse, error)
	Unregister(ctx context.Context, userID, eventID string) error
	ListByUser(ctx context.Context, userID string) (*RegistrationList, error)
	ListByEvent(ctx context.Context, eventID string) (*RegistrationList, error)
}

type service struct {
	repo   Repository
	events events.Repository
	users  users.Repository
	cache  cache.Service
	log    *logger.Logger
	cfg    config.EngineConfig
}

func NewService(repo Repository, eventRepo events.Repository, userRepo users.Repository, cacheService cache.Service, cfg config.EngineConfig) Service {
	return &service{
		repo:   repo,
		events: eventRepo,
		users:  userRepo,
		cache:  cacheService,
		log:    logger.GetDefault(),
		cfg:    cfg,
	}
}

// Register creates a registration for userID on eventID. The resolved status
// depends on the event's occupancy at commit time: confirmed while spots
// remain and nobody is queued, waitlisted when the event is full and the
// waitlist is enabled, EVENT_FULL otherwise.
func (s *service) Register(ctx context.Context, userID, eventID string) (*RegistrationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, apierr.New(apierr.CodeUserNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	for attempt := 1; attempt <= s.cfg.RetryBudget; attempt++ {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, events.ErrEventNotFound) {
				return nil, apierr.New(apierr.CodeEventNotFound, "event not found")
			}
			return nil, fmt.Errorf("failed to load event: %w", err)
		}

		existing, err := s.repo.GetRegistration(ctx, userID, eventID)
		if err == nil {
			return nil, alreadyRegisteredError(existing.Status)
		}
		if !errors.Is(err, ErrRegistrationNotFound) {
			return nil, fmt.Errorf("failed to load registration: %w", err)
		}

		// Queued users go first; a new arrival only takes a spot directly
		// when nobody is waiting.
		if event.RegisteredCount < event.Capacity && len(event.Waitlist) == 0 {
			reg := newRegistration(userID, event, StatusConfirmed)
			err = s.repo.TxRegisterConfirmed(ctx, reg)
			if outcome := classifyWrite(err); outcome != writeOK {
				if outcome == writeRetry {
					continue
				}
				return nil, s.writeError(err)
			}

			s.invalidateEvent(ctx, eventID)
			s.log.LogRegistrationCreated(ctx, userID, eventID, StatusConfirmed)
			resp := reg.ToResponse()
			return &resp, nil
		}

		if !event.WaitlistEnabled {
			return nil, apierr.New(apierr.CodeEventFull, "event is at capacity and has no waitlist")
		}

		reg := newRegistration(userID, event, StatusWaitlist)
		err = s.repo.TxRegisterWaitlist(ctx, reg)
		if outcome := classifyWrite(err); outcome != writeOK {
			if outcome == writeRetry {
				continue
			}
			return nil, s.writeError(err)
		}

		s.invalidateEvent(ctx, eventID)
		s.log.LogRegistrationCreated(ctx, userID, eventID, StatusWaitlist)
		resp := reg.ToResponse()
		return &resp, nil
	}

	s.log.LogContention(ctx, "register", eventID, s.cfg.RetryBudget)
	return nil, apierr.New(apierr.CodeContention, "registration could not be completed under concurrent load, please retry")
}

// Unregister removes userID's registration on eventID. Removing a confirmed
// registration frees a spot, which is handed to the waitlist head in FIFO
// order.
func (s *service) Unregister(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.OpTimeout)
	defer cancel()

	for attempt := 1; attempt <= s.cfg.RetryBudget; attempt++ {
		existing, err := s.repo.GetRegistration(ctx, userID, eventID)
		if err != nil {
			if errors.Is(err, ErrRegistrationNotFound) {
				return s.missingRegistrationError(ctx, eventID)
			}
			return fmt.Errorf("failed to load registration: %w", err)
		}

		if existing.Status == StatusConfirmed {
			err = s.repo.TxUnregisterConfirmed(ctx, userID, eventID)
		} else {
			err = s.repo.TxUnregisterWaitlist(ctx, userID, eventID)
		}

		switch {
		case err == nil:
			s.invalidateEvent(ctx, eventID)
			s.log.LogRegistrationCancelled(ctx, userID, eventID, existing.Status)
			if existing.Status == StatusConfirmed {
				s.promote(ctx, eventID)
			}
			return nil
		case errors.Is(err, ErrConditionFailed):
			// The registration's status changed underneath us, most likely a
			// promotion; re-read and take the matching path.
			continue
		case errors.Is(err, ErrRegistrationNotFound):
			return s.missingRegistrationError(ctx, eventID)
		case errors.Is(err, events.ErrEventNotFound):
			return apierr.New(apierr.CodeEventNotFound, "event not found")
		default:
			return fmt.Errorf("failed to unregister: %w", err)
		}
	}

	s.log.LogContention(ctx, "unregister", eventID, s.cfg.RetryBudget)
	return apierr.New(apierr.CodeContention, "unregistration could not be completed under concurrent load, please retry")
}

func (s *service) ListByUser(ctx context.Context, userID string) (*RegistrationList, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, apierr.New(apierr.CodeUserNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	regs, err := s.repo.QueryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return toList(regs), nil
}

func (s *service) ListByEvent(ctx context.Context, eventID string) (*RegistrationList, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return nil, apierr.New(apierr.CodeEventNotFound, "event not found")
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	regs, err := s.repo.QueryByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return toList(regs), nil
}

// promote hands freed spots to the waitlist head. Best effort: the
// unregistration is already committed, and a spot that stays open here is
// picked up by the next engine write on the event.
func (s *service) promote(ctx context.Context, eventID string) {
	for attempt := 1; attempt <= s.cfg.RetryBudget; attempt++ {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return
		}
		if event.RegisteredCount >= event.Capacity || len(event.Waitlist) == 0 {
			return
		}

		head := event.Waitlist[0]
		promoted, err := s.repo.TxPromoteHead(ctx, eventID, head)
		switch {
		case err == nil && promoted:
			s.invalidateEvent(ctx, eventID)
			s.log.LogWaitlistPromotion(ctx, head, eventID)
			return
		case err == nil:
			// Stale head popped; look at the next entry.
			s.invalidateEvent(ctx, eventID)
			continue
		case errors.Is(err, ErrConditionFailed):
			continue
		default:
			s.log.ErrorWithContext(ctx, "waitlist promotion failed", err, map[string]interface{}{
				"event_id": eventID,
			})
			return
		}
	}
	s.log.LogContention(ctx, "promote", eventID, s.cfg.RetryBudget)
}

type writeOutcome int

const (
	writeOK writeOutcome = iota
	writeRetry
	writeFail
)

// classifyWrite decides whether a failed conditional write should be retried
// from a fresh snapshot. Duplicates retry too: the re-read finds the existing
// registration and reports its actual status.
func classifyWrite(err error) writeOutcome {
	switch {
	case err == nil:
		return writeOK
	case errors.Is(err, ErrConditionFailed), errors.Is(err, ErrDuplicate):
		return writeRetry
	default:
		return writeFail
	}
}

func (s *service) writeError(err error) error {
	if errors.Is(err, events.ErrEventNotFound) {
		return apierr.New(apierr.CodeEventNotFound, "event not found")
	}
	return fmt.Errorf("failed to register: %w", err)
}

func (s *service) missingRegistrationError(ctx context.Context, eventID string) error {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return apierr.New(apierr.CodeEventNotFound, "event not found")
		}
		return fmt.Errorf("failed to load event: %w", err)
	}
	return apierr.New(apierr.CodeRegistrationNotFound, "registration not found for this user and event")
}

func alreadyRegisteredError(status string) error {
	if status == StatusWaitlist {
		return apierr.New(apierr.CodeAlreadyOnWaitlist, "user is already on the waitlist for this event")
	}
	return apierr.New(apierr.CodeAlreadyRegistered, "user is already registered for this event")
}

func newRegistration(userID string, event *events.Event, status string) *Registration {
	now := time.Now().UTC()
	return &Registration{
		UserID:       userID,
		EventID:      event.EventID,
		Status:       status,
		EventTitle:   event.Title,
		EventDate:    event.Date,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

func toList(regs []Registration) *RegistrationList {
	responses := make([]RegistrationResponse, 0, len(regs))
	for i := range regs {
		responses = append(responses, regs[i].ToResponse())
	}
	return &RegistrationList{Registrations: responses, Total: len(responses)}
}

func (s *service) invalidateEvent(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.EventDetailKey(eventID)); err != nil {
		s.log.WithError(err).Debug("event detail cache invalidation failed")
	}
	if err := s.cache.DeletePattern(ctx, constants.EventsListPattern()); err != nil {
		s.log.WithError(err).Debug("event list cache invalidation failed")
	}
}
