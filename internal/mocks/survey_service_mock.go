package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"survey-server/internal/models"
	"survey-server/internal/service"
)

// MockSurveyService is a mock type for the SurveyService type
type MockSurveyService struct {
	mock.Mock
}

// StartSession provides a mock function with given fields: ctx
func (_m *MockSurveyService) StartSession(ctx context.Context) (string, models.TurnResponse, error) {
	ret := _m.Called(ctx)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 models.TurnResponse
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(models.TurnResponse)
	}

	return r0, r1, ret.Error(2)
}

// ProcessTurn provides a mock function with given fields: ctx, sessionID, filename, audio, mimeHint
func (_m *MockSurveyService) ProcessTurn(ctx context.Context, sessionID string, filename string, audio []byte, mimeHint string) (models.TurnResponse, error) {
	ret := _m.Called(ctx, sessionID, filename, audio, mimeHint)

	var r0 models.TurnResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(models.TurnResponse)
	}

	return r0, ret.Error(1)
}

// QuestionAudio provides a mock function with given fields: ctx, index
func (_m *MockSurveyService) QuestionAudio(ctx context.Context, index int) ([]byte, bool, error) {
	ret := _m.Called(ctx, index)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Bool(1), ret.Error(2)
}

// NewMockSurveyService creates a new instance of MockSurveyService.
func NewMockSurveyService(t interface {
	mock.TestingT
	Helper()
}) *MockSurveyService {
	m := &MockSurveyService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.SurveyService = (*MockSurveyService)(nil)
