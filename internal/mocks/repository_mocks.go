package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"survey-server/internal/models"
	"survey-server/internal/repository"
)

// MockResponseRepository is a mock type for the ResponseRepository type
type MockResponseRepository struct {
	mock.Mock
}

// Append provides a mock function with given fields: ctx, record
func (_m *MockResponseRepository) Append(ctx context.Context, record models.TurnRecord) error {
	ret := _m.Called(ctx, record)
	return ret.Error(0)
}

// NewMockResponseRepository creates a new instance of MockResponseRepository.
func NewMockResponseRepository(t interface {
	mock.TestingT
	Helper()
}) *MockResponseRepository {
	m := &MockResponseRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.ResponseRepository = (*MockResponseRepository)(nil)
