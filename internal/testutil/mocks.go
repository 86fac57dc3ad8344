package testutil

import (
	"context"

	"filmwise/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock for api.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateUser(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockGateway) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockGateway) FetchQuizCatalog(ctx context.Context) ([]domain.Movie, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movie), args.Error(1)
}

func (m *MockGateway) FetchRatingHistory(ctx context.Context, name string) ([]domain.UserRating, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserRating), args.Error(1)
}

func (m *MockGateway) PostRatings(ctx context.Context, name string, ratings []domain.UserRating) error {
	args := m.Called(ctx, name, ratings)
	return args.Error(0)
}

func (m *MockGateway) FetchRecommendations(ctx context.Context, users []domain.User) ([]domain.Movie, error) {
	args := m.Called(ctx, users)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movie), args.Error(1)
}

// MockUserStore is a mock for repository.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Load(chatID int64) (*domain.User, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) Save(chatID int64, user domain.User) error {
	args := m.Called(chatID, user)
	return args.Error(0)
}

func (m *MockUserStore) Delete(chatID int64) error {
	args := m.Called(chatID)
	return args.Error(0)
}
