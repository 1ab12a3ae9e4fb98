package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"survey-server/internal/models"
	"survey-server/internal/service"
)

// MockIntentClassifier is a mock type for the IntentClassifier type
type MockIntentClassifier struct {
	mock.Mock
}

// Classify provides a mock function with given fields: ctx, sessionID, question, utteranceText
func (_m *MockIntentClassifier) Classify(ctx context.Context, sessionID string, question models.Question, utteranceText string) (models.IntentResult, error) {
	ret := _m.Called(ctx, sessionID, question, utteranceText)

	var r0 models.IntentResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(models.IntentResult)
	}

	return r0, ret.Error(1)
}

// NewMockIntentClassifier creates a new instance of MockIntentClassifier.
func NewMockIntentClassifier(t interface {
	mock.TestingT
	Helper()
}) *MockIntentClassifier {
	m := &MockIntentClassifier{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.IntentClassifier = (*MockIntentClassifier)(nil)

// MockAnswerInterpreter is a mock type for the AnswerInterpreter type
type MockAnswerInterpreter struct {
	mock.Mock
}

// Interpret provides a mock function with given fields: ctx, sessionID, question, answerText
func (_m *MockAnswerInterpreter) Interpret(ctx context.Context, sessionID string, question models.Question, answerText string) (models.ValidationResult, error) {
	ret := _m.Called(ctx, sessionID, question, answerText)

	var r0 models.ValidationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(models.ValidationResult)
	}

	return r0, ret.Error(1)
}

// NewMockAnswerInterpreter creates a new instance of MockAnswerInterpreter.
func NewMockAnswerInterpreter(t interface {
	mock.TestingT
	Helper()
}) *MockAnswerInterpreter {
	m := &MockAnswerInterpreter{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.AnswerInterpreter = (*MockAnswerInterpreter)(nil)

// MockQuestionExplainer is a mock type for the QuestionExplainer type
type MockQuestionExplainer struct {
	mock.Mock
}

// Explain provides a mock function with given fields: ctx, sessionID, questionText
func (_m *MockQuestionExplainer) Explain(ctx context.Context, sessionID string, questionText string) (string, error) {
	ret := _m.Called(ctx, sessionID, questionText)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	return r0, ret.Error(1)
}

// NewMockQuestionExplainer creates a new instance of MockQuestionExplainer.
func NewMockQuestionExplainer(t interface {
	mock.TestingT
	Helper()
}) *MockQuestionExplainer {
	m := &MockQuestionExplainer{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.QuestionExplainer = (*MockQuestionExplainer)(nil)
