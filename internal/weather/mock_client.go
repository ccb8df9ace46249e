package weather

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client using testify/mock.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Current(ctx context.Context, city string, units Units) (Reading, error) {
	args := m.Called(ctx, city, units)
	return args.Get(0).(Reading), args.Error(1)
}
