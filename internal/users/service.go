package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gatherly/internal/shared/apierr"
	"gatherly/internal/shared/validation"
)

// Service interface defines the contract for user business logic
type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateUser validates the payload and inserts the user. The userId is taken
// verbatim; only the display name is canonicalised by trimming.
func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &User{
		UserID:    req.UserID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, apierr.New(apierr.CodeDuplicateUser, "user with this userId already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apierr.New(apierr.CodeUserNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
