package events

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"gatherly/pkg/retry"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrDuplicateEvent = errors.New("event already exists")
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, eventID string) (*Event, error)
	GetAll(ctx context.Context, status string) ([]Event, error)
	// UpdateOpaque patches non-engine columns only. Callers must never pass
	// capacity, registered_count, waitlist_enabled or waitlist.
	UpdateOpaque(ctx context.Context, eventID string, updates map[string]interface{}) (*Event, error)
	Delete(ctx context.Context, eventID string) error
}

type repository struct {
	db    *gorm.DB
	retry retry.Config
}

func NewRepository(db *gorm.DB, retryCfg retry.Config) Repository {
	return &repository{db: db, retry: retryCfg}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(event).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEvent
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, eventID string) (*Event, error) {
	var event Event
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context, status string) ([]Event, error) {
	var events []Event

	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		db := r.db.WithContext(ctx).Model(&Event{})
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db.Find(&events).Error
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

var engineColumns = map[string]bool{
	"capacity":         true,
	"registered_count": true,
	"waitlist_enabled": true,
	"waitlist":         true,
}

func (r *repository) UpdateOpaque(ctx context.Context, eventID string, updates map[string]interface{}) (*Event, error) {
	for col := range updates {
		if engineColumns[col] {
			return nil, errors.New("refusing to update engine-owned column: " + col)
		}
	}
	updates["updated_at"] = time.Now().UTC()

	var event Event
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		result := r.db.WithContext(ctx).
			Model(&Event{}).
			Where("event_id = ?", eventID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *repository) Delete(ctx context.Context, eventID string) error {
	return retry.Do(ctx, r.retry, func(ctx context.Context) error {
		result := r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&Event{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventNotFound
		}
		return nil
	})
}
