package users

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gatherly/pkg/retry"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user already exists")
)

type Repository interface {
	// Create inserts the user, failing with ErrDuplicateUser when the
	// userId is already taken.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
}

type repository struct {
	db    *gorm.DB
	retry retry.Config
}

func NewRepository(db *gorm.DB, retryCfg retry.Config) Repository {
	return &repository{db: db, retry: retryCfg}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, userID string) (*User, error) {
	var user User
	err := retry.Do(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
