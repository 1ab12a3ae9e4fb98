package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"survey-server/internal/mocks"
	"survey-server/internal/models"
	"survey-server/internal/service"
)

var closedQuestion = models.Question{
	ID:      1,
	Text:    "What is your age group?",
	Options: []string{"18-25", "26-40", "41+"},
}

func TestInterpret_OpenEnded(t *testing.T) {
	oracle := mocks.NewMockOracle(t)
	interpreter := service.NewAnswerInterpreter(oracle, zap.NewNop())

	openQuestion := models.Question{ID: 2, Text: "Any comments?"}

	// Открытый вопрос принимается без обращения к оракулу
	result, err := interpreter.Interpret(context.Background(), testSessionID, openQuestion, "whatever I say")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Nil(t, result.MappedOption)
	oracle.AssertNotCalled(t, "Complete")
}

func TestInterpret_ClosedQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("Oracle option is matched case-insensitively, original casing returned", func(t *testing.T) {
		oracle := mocks.NewMockOracle(t)
		interpreter := service.NewAnswerInterpreter(oracle, zap.NewNop())

		oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
			Return(`{"mappedOption": " 26-40 "}`, service.UsageInfo{}, nil).Once()

		result, err := interpreter.Interpret(ctx, testSessionID, closedQuestion, "I'm in my thirties")
		require.NoError(t, err)
		assert.True(t, result.Valid)
		require.NotNil(t, result.MappedOption)
		assert.Equal(t, "26-40", *result.MappedOption)
	})

	t.Run("Null mappedOption is invalid", func(t *testing.T) {
		oracle := mocks.NewMockOracle(t)
		interpreter := service.NewAnswerInterpreter(oracle, zap.NewNop())

		oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
			Return(`{"mappedOption": null}`, service.UsageInfo{}, nil).Once()

		result, err := interpreter.Interpret(ctx, testSessionID, closedQuestion, "purple")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Nil(t, result.MappedOption)
	})

	t.Run("Option outside the list is invalid", func(t *testing.T) {
		oracle := mocks.NewMockOracle(t)
		interpreter := service.NewAnswerInterpreter(oracle, zap.NewNop())

		// Оракул галлюцинирует вариант, которого нет в списке
		oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
			Return(`{"mappedOption": "30-50"}`, service.UsageInfo{}, nil).Once()

		result, err := interpreter.Interpret(ctx, testSessionID, closedQuestion, "around forty")
		require.NoError(t, err)
		assert.False(t, result.Valid)
	})

	t.Run("Fenced JSON is accepted", func(t *testing.T) {
		oracle := mocks.NewMockOracle(t)
		interpreter := service.NewAnswerInterpreter(oracle, zap.NewNop())

		oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
			Return("```json\n{\"mappedOption\": \"41+\"}\n```", service.UsageInfo{}, nil).Once()

		result, err := interpreter.Interpret(ctx, testSessionID, closedQuestion, "over forty")
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, "41+", *result.MappedOption)
	})

	t.Run("Malformed JSON surfaces as ErrOracleUnavailable", func(t *testing.T) {
		oracle := mocks.NewMockOracle(t)
		interpreter := service.NewAnswerInterpreter(oracle, zap.NewNop())

		oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
			Return("sure, the answer is 26-40", service.UsageInfo{}, nil).Once()

		_, err := interpreter.Interpret(ctx, testSessionID, closedQuestion, "thirty")
		assert.ErrorIs(t, err, models.ErrOracleUnavailable)
	})

	t.Run("Oracle failure is propagated", func(t *testing.T) {
		oracle := mocks.NewMockOracle(t)
		interpreter := service.NewAnswerInterpreter(oracle, zap.NewNop())

		oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
			Return("", service.UsageInfo{}, models.ErrOracleUnavailable).Once()

		_, err := interpreter.Interpret(ctx, testSessionID, closedQuestion, "thirty")
		assert.ErrorIs(t, err, models.ErrOracleUnavailable)
	})
}
