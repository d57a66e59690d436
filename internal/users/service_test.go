package users

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"gatherly/internal/shared/apierr"
)

type fakeRepo struct {
	mu    sync.Mutex
	users map[string]User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]User)}
}

func (f *fakeRepo) Create(ctx context.Context, user *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.UserID]; ok {
		return ErrDuplicateUser
	}
	f.users[user.UserID] = *user
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, userID string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func requireCode(t *testing.T, err error, code apierr.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apierr.From(err).Code)
}

func TestCreateUser(t *testing.T) {
	svc := NewService(newFakeRepo())

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		UserID: "alice-01",
		Name:   "  Alice Smith  ",
	})
	require.NoError(t, err)
	require.Equal(t, "alice-01", user.UserID)
	require.Equal(t, "Alice Smith", user.Name)
	require.False(t, user.CreatedAt.IsZero())
	require.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestCreateUserDuplicate(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{UserID: "alice", Name: "Alice"})
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{UserID: "alice", Name: "Another Alice"})
	requireCode(t, err, apierr.CodeDuplicateUser)
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	cases := []struct {
		name string
		req  CreateUserRequest
	}{
		{"missing userId", CreateUserRequest{Name: "Alice"}},
		{"userId with spaces", CreateUserRequest{UserID: "alice smith", Name: "Alice"}},
		{"userId with symbols", CreateUserRequest{UserID: "alice@example", Name: "Alice"}},
		{"missing name", CreateUserRequest{UserID: "alice"}},
		{"blank name", CreateUserRequest{UserID: "alice", Name: "   "}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tc.req)
			requireCode(t, err, apierr.CodeValidation)
		})
	}
}

func TestGetUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{UserID: "alice", Name: "Alice"})
	require.NoError(t, err)

	user, err := svc.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.GetUser(context.Background(), "ghost")
	requireCode(t, err, apierr.CodeUserNotFound)
}
