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

func TestClassify(t *testing.T) {
	ctx := context.Background()

	classify := func(t *testing.T, raw string) (models.IntentResult, error) {
		oracle := mocks.NewMockOracle(t)
		classifier := service.NewIntentClassifier(oracle, zap.NewNop())
		oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
			Return(raw, service.UsageInfo{}, nil).Once()
		return classifier.Classify(ctx, testSessionID, closedQuestion, "some utterance")
	}

	t.Run("Answer", func(t *testing.T) {
		result, err := classify(t, `{"intent": "ANSWER", "targetQuestion": null}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentAnswer, result.Intent)
		assert.Nil(t, result.TargetQuestion)
	})

	t.Run("Lowercase intent is normalized", func(t *testing.T) {
		result, err := classify(t, `{"intent": " query "}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentQuery, result.Intent)
	})

	t.Run("Change request carries the target", func(t *testing.T) {
		result, err := classify(t, `{"intent": "CHANGE_REQUEST", "targetQuestion": 2}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentChangeRequest, result.Intent)
		require.NotNil(t, result.TargetQuestion)
		assert.Equal(t, 2, *result.TargetQuestion)
	})

	t.Run("Non-positive target is dropped", func(t *testing.T) {
		result, err := classify(t, `{"intent": "CHANGE_REQUEST", "targetQuestion": 0}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentChangeRequest, result.Intent)
		assert.Nil(t, result.TargetQuestion)
	})

	t.Run("Target outside CHANGE_REQUEST is ignored", func(t *testing.T) {
		result, err := classify(t, `{"intent": "ANSWER", "targetQuestion": 3}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentAnswer, result.Intent)
		assert.Nil(t, result.TargetQuestion)
	})

	t.Run("Unknown intent degrades to INVALID", func(t *testing.T) {
		result, err := classify(t, `{"intent": "GREETING"}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentInvalid, result.Intent)
	})

	t.Run("Malformed JSON surfaces as ErrOracleUnavailable", func(t *testing.T) {
		_, err := classify(t, "that sounds like an answer to me")
		assert.ErrorIs(t, err, models.ErrOracleUnavailable)
	})
}

func TestClassify_OracleError(t *testing.T) {
	oracle := mocks.NewMockOracle(t)
	classifier := service.NewIntentClassifier(oracle, zap.NewNop())

	oracle.On("Complete", mock.Anything, testSessionID, mock.Anything, mock.Anything, mock.Anything).
		Return("", service.UsageInfo{}, models.ErrOracleUnavailable).Once()

	_, err := classifier.Classify(context.Background(), testSessionID, closedQuestion, "hello")
	assert.ErrorIs(t, err, models.ErrOracleUnavailable)
}
