package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"libraryhub/internal/access"
	"libraryhub/internal/auth"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
)

// Demo ids, in seeding order.
const (
	adminID uint = 1
	johnID  uint = 2
	janeID  uint = 3

	bookSolitude    uint = 1
	book1984        uint = 2
	bookPride       uint = 3
	bookMockingbird uint = 4
	bookGatsby      uint = 5
	bookAnimalFarm  uint = 6

	seedLoan1984 uint = 1
)

func asAdmin() context.Context {
	return access.WithPrincipal(context.Background(), &access.Principal{
		UserID: adminID, Email: "admin@library.com", Name: "Admin User", Role: model.RoleAdmin, SessionID: "admin-session",
	})
}

func asJohn() context.Context {
	return access.WithPrincipal(context.Background(), &access.Principal{
		UserID: johnID, Email: "john.doe@email.com", Name: "John Doe", Role: model.RoleUser, SessionID: "john-session",
	})
}

func asJane() context.Context {
	return access.WithPrincipal(context.Background(), &access.Principal{
		UserID: janeID, Email: "jane.smith@email.com", Name: "Jane Smith", Role: model.RoleUser, SessionID: "jane-session",
	})
}

func ptr[T any](v T) *T { return &v }

// MockSessionStore is a mock implementation of auth.SessionStore.
type MockSessionStore struct {
	mock.Mock
}

var _ auth.SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) Save(ctx context.Context, session *auth.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionStore) RevokeUser(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func loanFilterAll() repository.LoanFilter {
	return repository.LoanFilter{Now: time.Now()}
}
