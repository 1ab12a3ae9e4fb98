package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"survey-server/internal/models"
)

// Системный промт классификатора интентов.
const classifierSystemPrompt = `You classify a spoken utterance made while answering a survey question.
Exactly one of:
- "ANSWER": the utterance answers the current question.
- "QUERY": the user asks what the question means or asks to explain it.
- "CHANGE_REQUEST": the user asks to go to / redo a specific question (extract its number).
- "INVALID": anything else.

Return ONLY valid JSON:
{
  "intent": "ANSWER" | "QUERY" | "CHANGE_REQUEST" | "INVALID",
  "targetQuestion": number or null
}
targetQuestion is the 1-based question number and must be null unless intent is CHANGE_REQUEST.`

// IntentClassifier классифицирует высказывание в контексте текущего вопроса.
type IntentClassifier interface {
	Classify(ctx context.Context, sessionID string, question models.Question, utteranceText string) (models.IntentResult, error)
}

// oracleIntentClassifier реализует IntentClassifier через текстового оракула.
type oracleIntentClassifier struct {
	oracle Oracle
	logger *zap.Logger
}

// NewIntentClassifier создает классификатор интентов.
func NewIntentClassifier(oracle Oracle, logger *zap.Logger) IntentClassifier {
	return &oracleIntentClassifier{
		oracle: oracle,
		logger: logger.Named("IntentClassifier"),
	}
}

func (c *oracleIntentClassifier) Classify(ctx context.Context, sessionID string, question models.Question, utteranceText string) (models.IntentResult, error) {
	userInput := fmt.Sprintf("Current Question:\n%s\n\nOptions:\n%s\n\nUtterance:\n%q",
		question.Text, strings.Join(question.Options, "\n"), utteranceText)

	raw, _, err := c.oracle.Complete(ctx, sessionID, classifierSystemPrompt, userInput, CompletionParams{
		Temperature: float64Ptr(0),
		JSONMode:    true,
	})
	if err != nil {
		return models.IntentResult{}, err
	}

	var parsed struct {
		Intent         string `json:"intent"`
		TargetQuestion *int   `json:"targetQuestion"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		c.logger.Warn("Некорректный JSON от оракула при классификации интента",
			zap.String("session_id", sessionID),
			zap.String("raw", raw),
			zap.Error(err))
		return models.IntentResult{}, fmt.Errorf("%w: некорректный JSON классификации: %v", models.ErrOracleUnavailable, err)
	}

	result := models.IntentResult{Intent: models.IntentInvalid}

	// Выход оракула не доверяем: неизвестная строка интента деградирует в INVALID,
	// номер вопроса принимается только для CHANGE_REQUEST и только положительный.
	switch models.Intent(strings.ToUpper(strings.TrimSpace(parsed.Intent))) {
	case models.IntentAnswer:
		result.Intent = models.IntentAnswer
	case models.IntentQuery:
		result.Intent = models.IntentQuery
	case models.IntentChangeRequest:
		result.Intent = models.IntentChangeRequest
		if parsed.TargetQuestion != nil && *parsed.TargetQuestion > 0 {
			target := *parsed.TargetQuestion
			result.TargetQuestion = &target
		}
	case models.IntentInvalid:
		result.Intent = models.IntentInvalid
	default:
		c.logger.Debug("Неизвестный интент от оракула",
			zap.String("session_id", sessionID),
			zap.String("intent", parsed.Intent))
	}

	return result, nil
}
