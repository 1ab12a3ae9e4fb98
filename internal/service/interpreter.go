package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"survey-server/internal/models"
)

// Системный промт интерпретатора: оракул обязан вернуть ровно один из
// предложенных вариантов дословно либо null.
const interpreterSystemPrompt = `You map a spoken survey answer onto one of the given options.
- If the answer clearly matches ONE option, return that option exactly as given.
- If it does NOT clearly match, return null.

Return ONLY valid JSON:
{
  "mappedOption": string or null
}`

// AnswerInterpreter сопоставляет свободный ответ с закрытым набором вариантов.
type AnswerInterpreter interface {
	Interpret(ctx context.Context, sessionID string, question models.Question, answerText string) (models.ValidationResult, error)
}

// oracleAnswerInterpreter реализует AnswerInterpreter через текстового оракула.
type oracleAnswerInterpreter struct {
	oracle Oracle
	logger *zap.Logger
}

// NewAnswerInterpreter создает интерпретатор ответов.
func NewAnswerInterpreter(oracle Oracle, logger *zap.Logger) AnswerInterpreter {
	return &oracleAnswerInterpreter{
		oracle: oracle,
		logger: logger.Named("AnswerInterpreter"),
	}
}

func (i *oracleAnswerInterpreter) Interpret(ctx context.Context, sessionID string, question models.Question, answerText string) (models.ValidationResult, error) {
	// Открытый вопрос - принимаем без валидации
	if question.IsOpenEnded() {
		return models.ValidationResult{MappedOption: nil, Valid: true}, nil
	}

	userInput := fmt.Sprintf("Question:\n%s\n\nOptions:\n%s\n\nUser Answer:\n%q",
		question.Text, strings.Join(question.Options, "\n"), answerText)

	raw, _, err := i.oracle.Complete(ctx, sessionID, interpreterSystemPrompt, userInput, CompletionParams{
		Temperature: float64Ptr(0),
		JSONMode:    true,
	})
	if err != nil {
		return models.ValidationResult{}, err
	}

	var parsed struct {
		MappedOption *string `json:"mappedOption"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		i.logger.Warn("Некорректный JSON от оракула при валидации ответа",
			zap.String("session_id", sessionID),
			zap.String("raw", raw),
			zap.Error(err))
		return models.ValidationResult{}, fmt.Errorf("%w: некорректный JSON валидации: %v", models.ErrOracleUnavailable, err)
	}

	if parsed.MappedOption == nil {
		return models.ValidationResult{MappedOption: nil, Valid: false}, nil
	}

	// Выход оракула не доверяем: принимаем только дословное совпадение с одним
	// из вариантов (после trim и case-fold), возвращаем исходное написание.
	candidate := strings.TrimSpace(*parsed.MappedOption)
	for _, opt := range question.Options {
		if strings.EqualFold(candidate, strings.TrimSpace(opt)) {
			matched := opt
			return models.ValidationResult{MappedOption: &matched, Valid: true}, nil
		}
	}

	i.logger.Debug("Оракул вернул вариант вне списка",
		zap.String("session_id", sessionID),
		zap.String("candidate", candidate))
	return models.ValidationResult{MappedOption: nil, Valid: false}, nil
}

func float64Ptr(f float64) *float64 {
	return &f
}
