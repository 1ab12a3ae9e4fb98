package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"survey-server/internal/service"
)

// MockOracle is a mock type for the Oracle type
type MockOracle struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, sessionID, systemPrompt, userInput, params
func (_m *MockOracle) Complete(ctx context.Context, sessionID string, systemPrompt string, userInput string, params service.CompletionParams) (string, service.UsageInfo, error) {
	ret := _m.Called(ctx, sessionID, systemPrompt, userInput, params)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 service.UsageInfo
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(service.UsageInfo)
	}

	return r0, r1, ret.Error(2)
}

// NewMockOracle creates a new instance of MockOracle. It also registers a testing interface on the mock.
// The first argument is typically a *testing.T value.
func NewMockOracle(t interface {
	mock.TestingT
	Helper()
}) *MockOracle {
	m := &MockOracle{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.Oracle = (*MockOracle)(nil)
