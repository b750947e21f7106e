package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tictoc/tictoc/pkg/model"
	"github.com/tictoc/tictoc/pkg/server/store"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

var _ store.UsersStore = (*MockUsersStore)(nil)

func (m *MockUsersStore) ListUsers(ctx context.Context, limit, offset int) ([]model.UserView, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserView), args.Error(1)
}

func (m *MockUsersStore) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsersStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.UserView, error) {
	args := m.Called(ctx, name, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserView), args.Error(1)
}

func (m *MockUsersStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

var _ store.HealthStore = (*MockHealthStore)(nil)

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
