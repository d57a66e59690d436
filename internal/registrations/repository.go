package registrations

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gatherly/internal/events"
	"gatherly/pkg/retry"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrConditionFailed means the state the caller observed no longer holds.
	// The engine re-reads and decides again; it is never surfaced as-is.
	ErrConditionFailed = errors.New("transactional condition failed")

	// ErrDuplicate means a registration row for the (user, event) pair already
	// exists. The engine re-reads to resolve which status it holds.
	ErrDuplicate = errors.New("registration already exists")
)

// Repository provides reads plus the transactional writes the engine drives.
// Every Tx method locks the event row FOR UPDATE, re-checks its precondition
// under the lock, and either commits the full effect or fails with
// ErrConditionFailed leaving the store untouched.
type Repository interface {
	GetRegistration(ctx context.Context, userID, eventID string) (*Registration, error)
	QueryByUser(ctx context.Context, userID string) ([]Registration, error)
	QueryByEvent(ctx context.Context, eventID string) ([]Registration, error)

	// TxRegisterConfirmed inserts reg as confirmed and increments the event's
	// registeredCount. Requires a free spot and an empty waitlist; queued
	// users keep their place ahead of new arrivals.
	TxRegisterConfirmed(ctx context.Context, reg *Registration) error

	// TxRegisterWaitlist inserts reg as waitlisted and appends the user to
	// the event's queue. Requires the event to still be full.
	TxRegisterWaitlist(ctx context.Context, reg *Registration) error

	// TxUnregisterConfirmed deletes a confirmed registration and decrements
	// the event's registeredCount.
	TxUnregisterConfirmed(ctx context.Context, userID, eventID string) error

	// TxUnregisterWaitlist deletes a waitlisted registration and removes the
	// user from the event's queue.
	TxUnregisterWaitlist(ctx context.Context, userID, eventID string) error

	// TxPromoteHead flips the queue head's registration to confirmed, pops it
	// from the queue and increments registeredCount. expectedHead guards
	// against a queue that moved since the caller's read. When the head's
	// registration row is gone the stale entry is popped and (false, nil) is
	// returned so the caller can try the next head.
	TxPromoteHead(ctx context.Context, eventID, expectedHead string) (bool, error)
}

type repository struct {
	db    *gorm.DB
	retry retry.Config
}

func NewRepository(db *gorm.DB, retryCfg retry.Config) Repository {
	return &repository{db: db, retry: retryCfg}
}

func (r *repository) GetRegistration(ctx context.Context, userID, eventID string) (*Registration, error) {
	var reg Registration
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("user_id = ? AND event_id = ?", userID, eventID).
			First(&reg).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *repository) QueryByUser(ctx context.Context, userID string) ([]Registration, error) {
	var regs []Registration
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("registered_at ASC").
			Find(&regs).Error
	})
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *repository) QueryByEvent(ctx context.Context, eventID string) ([]Registration, error) {
	var regs []Registration
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("event_id = ?", eventID).
			Order("registered_at ASC").
			Find(&regs).Error
	})
	if err != nil {
		return nil, err
	}
	return regs, nil
}

// lockEvent reads the event row FOR UPDATE inside tx.
func lockEvent(tx *gorm.DB, eventID string) (*events.Event, error) {
	var event events.Event
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ?", eventID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, events.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) TxRegisterConfirmed(ctx context.Context, reg *Registration) error {
	return retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event, err := lockEvent(tx, reg.EventID)
			if err != nil {
				return err
			}

			if event.RegisteredCount >= event.Capacity || len(event.Waitlist) > 0 {
				return ErrConditionFailed
			}

			if err := tx.Create(reg).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicate
				}
				return err
			}

			return tx.Model(&events.Event{}).
				Where("event_id = ?", reg.EventID).
				Updates(map[string]interface{}{
					"registered_count": event.RegisteredCount + 1,
					"updated_at":       time.Now().UTC(),
				}).Error
		})
	})
}

func (r *repository) TxRegisterWaitlist(ctx context.Context, reg *Registration) error {
	return retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event, err := lockEvent(tx, reg.EventID)
			if err != nil {
				return err
			}

			// A spot opened since the caller's read, or the queue is gone;
			// let the engine re-decide.
			if event.RegisteredCount < event.Capacity && len(event.Waitlist) == 0 {
				return ErrConditionFailed
			}
			if !event.WaitlistEnabled {
				return ErrConditionFailed
			}
			if event.Waitlist.Contains(reg.UserID) {
				return ErrDuplicate
			}

			if err := tx.Create(reg).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrDuplicate
				}
				return err
			}

			return tx.Model(&events.Event{}).
				Where("event_id = ?", reg.EventID).
				Updates(map[string]interface{}{
					"waitlist":   append(event.Waitlist, reg.UserID),
					"updated_at": time.Now().UTC(),
				}).Error
		})
	})
}

func (r *repository) TxUnregisterConfirmed(ctx context.Context, userID, eventID string) error {
	return retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event, err := lockEvent(tx, eventID)
			if err != nil {
				return err
			}

			var reg Registration
			err = tx.Where("user_id = ? AND event_id = ?", userID, eventID).
				First(&reg).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRegistrationNotFound
				}
				return err
			}
			if reg.Status != StatusConfirmed {
				return ErrConditionFailed
			}

			if err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).
				Delete(&Registration{}).Error; err != nil {
				return err
			}

			count := event.RegisteredCount - 1
			if count < 0 {
				count = 0
			}
			return tx.Model(&events.Event{}).
				Where("event_id = ?", eventID).
				Updates(map[string]interface{}{
					"registered_count": count,
					"updated_at":       time.Now().UTC(),
				}).Error
		})
	})
}

func (r *repository) TxUnregisterWaitlist(ctx context.Context, userID, eventID string) error {
	return retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event, err := lockEvent(tx, eventID)
			if err != nil {
				return err
			}

			var reg Registration
			err = tx.Where("user_id = ? AND event_id = ?", userID, eventID).
				First(&reg).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRegistrationNotFound
				}
				return err
			}
			if reg.Status != StatusWaitlist {
				return ErrConditionFailed
			}

			if err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).
				Delete(&Registration{}).Error; err != nil {
				return err
			}

			return tx.Model(&events.Event{}).
				Where("event_id = ?", eventID).
				Updates(map[string]interface{}{
					"waitlist":   event.Waitlist.Remove(userID),
					"updated_at": time.Now().UTC(),
				}).Error
		})
	})
}

func (r *repository) TxPromoteHead(ctx context.Context, eventID, expectedHead string) (bool, error) {
	var promoted bool
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		promoted = false
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event, err := lockEvent(tx, eventID)
			if err != nil {
				return err
			}

			if len(event.Waitlist) == 0 || event.Waitlist[0] != expectedHead {
				return ErrConditionFailed
			}
			if event.RegisteredCount >= event.Capacity {
				return ErrConditionFailed
			}

			now := time.Now().UTC()

			var reg Registration
			err = tx.Where("user_id = ? AND event_id = ?", expectedHead, eventID).
				First(&reg).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Stale queue entry with no backing registration; pop it and
				// let the caller look at the next head.
				return tx.Model(&events.Event{}).
					Where("event_id = ?", eventID).
					Updates(map[string]interface{}{
						"waitlist":   event.Waitlist.Remove(expectedHead),
						"updated_at": now,
					}).Error
			}
			if err != nil {
				return err
			}

			if err := tx.Model(&Registration{}).
				Where("user_id = ? AND event_id = ?", expectedHead, eventID).
				Updates(map[string]interface{}{
					"status":     StatusConfirmed,
					"updated_at": now,
				}).Error; err != nil {
				return err
			}

			if err := tx.Model(&events.Event{}).
				Where("event_id = ?", eventID).
				Updates(map[string]interface{}{
					"registered_count": event.RegisteredCount + 1,
					"waitlist":         event.Waitlist.Remove(expectedHead),
					"updated_at":       now,
				}).Error; err != nil {
				return err
			}

			promoted = true
			return nil
		})
	})
	return promoted, err
}
