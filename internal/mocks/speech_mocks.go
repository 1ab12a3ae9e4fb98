package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"survey-server/internal/service"
)

// MockTranscriber is a mock type for the Transcriber type
type MockTranscriber struct {
	mock.Mock
}

// Transcribe provides a mock function with given fields: ctx, filename, audio, mimeHint
func (_m *MockTranscriber) Transcribe(ctx context.Context, filename string, audio []byte, mimeHint string) (string, error) {
	ret := _m.Called(ctx, filename, audio, mimeHint)

	var r0 string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	return r0, ret.Error(1)
}

// NewMockTranscriber creates a new instance of MockTranscriber.
func NewMockTranscriber(t interface {
	mock.TestingT
	Helper()
}) *MockTranscriber {
	m := &MockTranscriber{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.Transcriber = (*MockTranscriber)(nil)

// MockSynthesizer is a mock type for the Synthesizer type
type MockSynthesizer struct {
	mock.Mock
}

// Synthesize provides a mock function with given fields: ctx, text
func (_m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ret := _m.Called(ctx, text)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	return r0, ret.Error(1)
}

// NewMockSynthesizer creates a new instance of MockSynthesizer.
func NewMockSynthesizer(t interface {
	mock.TestingT
	Helper()
}) *MockSynthesizer {
	m := &MockSynthesizer{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.Synthesizer = (*MockSynthesizer)(nil)
